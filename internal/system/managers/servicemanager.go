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

package managers

import (
	"net/http"
	"strings"

	healthHandler "github.com/wso2/identity-resolution-service/internal/health_check/handler"
	overrideHandler "github.com/wso2/identity-resolution-service/internal/overrides/handler"
	"github.com/wso2/identity-resolution-service/internal/system/constants"
	irscontext "github.com/wso2/identity-resolution-service/internal/system/context"
	"github.com/wso2/identity-resolution-service/internal/system/utils"
)

type ServiceManagerInterface interface {
	RegisterServices(apiBasePath string) error
}

type ServiceManager struct {
	mux *http.ServeMux
}

// NewServiceManager creates a new instance of ServiceManager.
func NewServiceManager(mux *http.ServeMux) ServiceManagerInterface {

	return &ServiceManager{
		mux: mux,
	}
}

func (sm *ServiceManager) RegisterServices(apiBasePath string) error {

	health := healthHandler.NewHealthHandler()
	sm.mux.HandleFunc("/health", health.HandleHealth)
	sm.mux.HandleFunc("/ready", health.HandleReadiness)

	utils.RewriteToDefaultTenant(apiBasePath, sm.mux, constants.DefaultTenant)

	overrides := overrideHandler.NewOverrideHandler()

	// Single tenant dispatcher for all services
	utils.MountTenantDispatcher(sm.mux, apiBasePath, func(w http.ResponseWriter, r *http.Request) {
		r = r.Clone(irscontext.WithTraceID(r.Context(), irscontext.GetOrGenerateTraceID(r.Context())))

		// Internal path after tenant and base path stripping
		path := strings.TrimSuffix(r.URL.Path, "/")

		switch {
		case path == "/identity-overrides/merge" && r.Method == http.MethodPost:
			overrides.HandleMerge(w, r)
		case path == "/identity-overrides/resolve" && r.Method == http.MethodGet:
			overrides.HandleResolve(w, r)
		case path == "/identity-overrides" && r.Method == http.MethodGet:
			overrides.HandleList(w, r)
		default:
			http.NotFound(w, r)
		}
	})
	return nil
}
