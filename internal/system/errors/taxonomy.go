/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package errors

import "fmt"

// ConflictError indicates the store rejected a commit because the resulting
// state would break the override invariants (per-source uniqueness or the
// source/target disjointness). The condition is not self-resolving, so the
// caller must decide which merge request is authoritative; it must not be
// retried blindly.
type ConflictError struct {
	ErrorMessage
	Err error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// TransientStoreError indicates a lock-wait timeout, connection failure or
// similar infrastructure failure. The whole operation is safe to retry from
// scratch; no partial state exists.
type TransientStoreError struct {
	ErrorMessage
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
}

func (e *TransientStoreError) Unwrap() error {
	return e.Err
}

// NotFoundError indicates an identity token that has never been seen.
type NotFoundError struct {
	ErrorMessage
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func NewConflictError(description string, cause error) *ConflictError {
	return &ConflictError{
		ErrorMessage: ErrorMessage{
			Code:        MERGE_CONFLICT.Code,
			Message:     MERGE_CONFLICT.Message,
			Description: description,
		},
		Err: cause,
	}
}

func NewTransientStoreError(description string, cause error) *TransientStoreError {
	return &TransientStoreError{
		ErrorMessage: ErrorMessage{
			Code:        TRANSIENT_STORE_FAILURE.Code,
			Message:     TRANSIENT_STORE_FAILURE.Message,
			Description: description,
		},
		Err: cause,
	}
}

func NewNotFoundError(description string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{
			Code:        IDENTITY_NOT_FOUND.Code,
			Message:     IDENTITY_NOT_FOUND.Message,
			Description: description,
		},
	}
}
