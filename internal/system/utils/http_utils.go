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

package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/wso2/identity-resolution-service/internal/system/constants"
	customerrors "github.com/wso2/identity-resolution-service/internal/system/errors"
	"github.com/wso2/identity-resolution-service/internal/system/log"
)

// HandleError sends an HTTP error response based on the provided error kind.
// Conflict, transient-store and not-found errors carry their own status
// semantics; coded client errors carry theirs; everything else is a 500.
func HandleError(w http.ResponseWriter, err error) {

	w.Header().Set("Content-Type", "application/json")

	var conflictError *customerrors.ConflictError
	if errors.As(err, &conflictError) {
		writeErrorMessage(w, http.StatusConflict, conflictError.ErrorMessage)
		return
	}

	var transientError *customerrors.TransientStoreError
	if errors.As(err, &transientError) {
		writeErrorMessage(w, http.StatusServiceUnavailable, transientError.ErrorMessage)
		return
	}

	var notFoundError *customerrors.NotFoundError
	if errors.As(err, &notFoundError) {
		writeErrorMessage(w, http.StatusNotFound, notFoundError.ErrorMessage)
		return
	}

	var clientError *customerrors.ClientError
	if errors.As(err, &clientError) {
		writeErrorMessage(w, clientError.StatusCode, clientError.ErrorMessage)
		return
	}

	logger := log.GetLogger()
	logger.Error(err.Error())
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "Internal server error",
	})
}

func writeErrorMessage(w http.ResponseWriter, status int, msg customerrors.ErrorMessage) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Code        string `json:"code"`
		Message     string `json:"message"`
		Description string `json:"description"`
	}{
		Code:        msg.Code,
		Message:     msg.Message,
		Description: msg.Description,
	})
}

// WriteJSONResponse writes a success payload with the given status code.
func WriteJSONResponse(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteErrorResponse writes a coded client error response.
func WriteErrorResponse(w http.ResponseWriter, err *customerrors.ClientError) {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)

	_ = json.NewEncoder(w).Encode(err.ErrorMessage)
}

// ExtractTenantIdFromPath returns the tenant resolved by the tenant dispatcher.
func ExtractTenantIdFromPath(r *http.Request) string {
	tenant, _ := r.Context().Value(constants.TenantContextKey).(string)
	return tenant
}

// RewriteToDefaultTenant rewrites `/api/v1/...` to `/t/{defaultTenant}/api/v1/...`.
func RewriteToDefaultTenant(apiBasePath string, mux *http.ServeMux, defaultTenant string) {
	mux.HandleFunc(apiBasePath+"/", func(w http.ResponseWriter, r *http.Request) {
		newPath := "/t/" + defaultTenant + r.URL.Path
		http.Redirect(w, r, newPath, http.StatusTemporaryRedirect)
	})
}

// MountTenantDispatcher mounts a handler under `/t/{tenant}{apiBasePath}/...`,
// placing the tenant into the request context and stripping the prefix.
func MountTenantDispatcher(mux *http.ServeMux, apiBasePath string, handlerFunc http.HandlerFunc) {
	mux.HandleFunc("/t/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(r.URL.Path, "/")

		if !strings.HasPrefix(path, "/t/") {
			http.NotFound(w, r)
			return
		}

		// Split: /t/{tenant}/api/v1/...
		parts := strings.SplitN(path[len("/t/"):], "/", 2)
		if len(parts) != 2 || parts[0] == "" {
			http.Error(w, "Invalid tenant path format", http.StatusBadRequest)
			return
		}
		tenant := parts[0]
		rest := "/" + parts[1]
		if !strings.HasPrefix(rest, apiBasePath) {
			http.NotFound(w, r)
			return
		}

		r2 := r.Clone(context.WithValue(r.Context(), constants.TenantContextKey, tenant))
		r2.URL.Path = strings.TrimPrefix(rest, apiBasePath)
		handlerFunc(w, r2)
	})
}
