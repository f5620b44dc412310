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

package client

import (
	"context"
	"database/sql/driver"
	"io"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	errors2 "github.com/wso2/identity-resolution-service/internal/system/errors"
)

// ClassifyDBError maps a database error onto the merge error taxonomy.
//
// Integrity violations (SQLSTATE class 23) are the store vetoing a commit
// that would break an override invariant: they become ConflictError and are
// not retryable. Serialization failures, deadlocks, lock-wait timeouts,
// cancelled statements, connection and resource exhaustion errors are
// TransientStoreError: the transaction left no partial state and the whole
// operation may be retried. Anything else is surfaced as a coded
// ServerError with the given fallback message.
func ClassifyDBError(err error, fallback errors2.ErrorMessage, description string) error {

	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code.Class()) {
		case "23":
			return errors2.NewConflictError(description, err)
		case "40", "55", "57", "08", "53":
			return errors2.NewTransientStoreError(description, err)
		}
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors2.NewTransientStoreError(description, err)
	}

	return errors2.NewServerError(errors2.ErrorMessage{
		Code:        fallback.Code,
		Message:     fallback.Message,
		Description: description,
	}, err)
}
