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

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wso2/identity-resolution-service/internal/overrides/model"
	"github.com/wso2/identity-resolution-service/internal/overrides/provider"
	"github.com/wso2/identity-resolution-service/internal/system/authn"
	irscontext "github.com/wso2/identity-resolution-service/internal/system/context"
	errors2 "github.com/wso2/identity-resolution-service/internal/system/errors"
	"github.com/wso2/identity-resolution-service/internal/system/log"
	"github.com/wso2/identity-resolution-service/internal/system/utils"
)

type OverrideHandler struct{}

func NewOverrideHandler() *OverrideHandler {

	return &OverrideHandler{}
}

// HandleMerge handles a merge trigger from the ingestion pipeline.
func (oh *OverrideHandler) HandleMerge(w http.ResponseWriter, r *http.Request) {

	tenant := utils.ExtractTenantIdFromPath(r)
	if err := authn.ValidateAuthentication(r, tenant); err != nil {
		utils.HandleError(w, err)
		return
	}

	var mergeRequest model.MergeRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&mergeRequest); err != nil {
		clientError := errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: utils.HandleDecodeError(err, "identity merge"),
		}, http.StatusBadRequest)
		utils.WriteErrorResponse(w, clientError)
		return
	}

	overrideService := provider.NewOverrideProvider().GetOverrideService()
	err := overrideService.Merge(tenant, mergeRequest.OldToken, mergeRequest.NewToken, mergeRequest.OldestEventAt)

	logger := log.GetLogger()
	traceID := irscontext.GetTraceID(r.Context())
	if err != nil {
		logger.Audit(log.AuditEvent{
			InitiatorType: log.InitiatorTypeSystem,
			TargetID:      mergeRequest.OldToken,
			TargetType:    log.TargetTypeIdentity,
			ActionID:      log.ActionMergeRejected,
			TraceID:       traceID,
			Data: map[string]string{
				"tenant":    tenant,
				"new_token": mergeRequest.NewToken,
			},
		})
		utils.HandleError(w, err)
		return
	}

	logger.Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeSystem,
		TargetID:      mergeRequest.OldToken,
		TargetType:    log.TargetTypeIdentity,
		ActionID:      log.ActionMergeIdentities,
		TraceID:       traceID,
		Data: map[string]string{
			"tenant":    tenant,
			"new_token": mergeRequest.NewToken,
		},
	})
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "merged"})
}

// HandleResolve handles a canonical identity lookup.
func (oh *OverrideHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {

	tenant := utils.ExtractTenantIdFromPath(r)
	if err := authn.ValidateAuthentication(r, tenant); err != nil {
		utils.HandleError(w, err)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		clientError := errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: "Query parameter 'token' is required.",
		}, http.StatusBadRequest)
		utils.WriteErrorResponse(w, clientError)
		return
	}

	overrideService := provider.NewOverrideProvider().GetOverrideService()
	canonical, err := overrideService.ResolveCanonical(tenant, token)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, model.ResolveResponse{
		Token:          token,
		CanonicalToken: canonical,
	})
}

// HandleList returns the tenant's active override edges.
func (oh *OverrideHandler) HandleList(w http.ResponseWriter, r *http.Request) {

	tenant := utils.ExtractTenantIdFromPath(r)
	if err := authn.ValidateAuthentication(r, tenant); err != nil {
		utils.HandleError(w, err)
		return
	}

	overrideService := provider.NewOverrideProvider().GetOverrideService()
	edges, err := overrideService.ListOverrides(tenant)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if edges == nil {
		edges = []model.OverrideEdge{}
	}

	utils.WriteJSONResponse(w, http.StatusOK, edges)
}
