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

const errorPrefix = "IRS-"

var (
	// Server error codes

	DB_CLIENT_INIT = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Unable to initialize database client.",
	}

	BEGIN_TRANSACTION = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Error while starting database transaction.",
	}

	EXECUTE_QUERY = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while executing database query.",
	}

	GET_MAPPING = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while resolving identity mapping.",
	}

	ADD_OVERRIDE = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Error while recording identity override.",
	}

	REWRITE_OVERRIDES = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Error while rewriting override chain.",
	}

	RESOLVE_IDENTITY = ErrorMessage{
		Code:    errorPrefix + "15007",
		Message: "Error while resolving canonical identity.",
	}

	LIST_OVERRIDES = ErrorMessage{
		Code:    errorPrefix + "15008",
		Message: "Error while listing identity overrides.",
	}

	COMMIT_TRANSACTION = ErrorMessage{
		Code:    errorPrefix + "15009",
		Message: "Error while committing database transaction.",
	}

	LOCK_ACQUIRE = ErrorMessage{
		Code:    errorPrefix + "15010",
		Message: "Advisory lock acquisition failed",
	}

	LOCK_RELEASE = ErrorMessage{
		Code:    errorPrefix + "15011",
		Message: "Error while releasing the lock.",
	}

	LOCK_KEY_GEN = ErrorMessage{
		Code:    errorPrefix + "15012",
		Message: "Error generating advisory lock key",
	}

	LOCK_RESULT_INVALID = ErrorMessage{
		Code:    errorPrefix + "15013",
		Message: "Invalid response from advisory lock query.",
	}

	// Merge outcome codes

	MERGE_CONFLICT = ErrorMessage{
		Code:    errorPrefix + "13001",
		Message: "Merge rejected by override invariants.",
	}

	TRANSIENT_STORE_FAILURE = ErrorMessage{
		Code:    errorPrefix + "13002",
		Message: "Transient store failure.",
	}

	IDENTITY_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "13003",
		Message: "Identity token has never been seen.",
	}

	// Client error codes

	BAD_REQUEST = ErrorMessage{
		Code:    errorPrefix + "11001",
		Message: "Invalid body format.",
	}

	UN_AUTHORIZED = ErrorMessage{
		Code:        errorPrefix + "11002",
		Message:     "Unauthorized",
		Description: "Authorization failure. Authorization information was invalid or missing from your request.",
	}
)
