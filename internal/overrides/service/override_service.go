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

package service

import (
	"fmt"
	"net/http"
	"time"

	mappingStore "github.com/wso2/identity-resolution-service/internal/mappings/store"
	"github.com/wso2/identity-resolution-service/internal/overrides/model"
	"github.com/wso2/identity-resolution-service/internal/overrides/store"
	"github.com/wso2/identity-resolution-service/internal/system/database/client"
	"github.com/wso2/identity-resolution-service/internal/system/database/provider"
	errors2 "github.com/wso2/identity-resolution-service/internal/system/errors"
	"github.com/wso2/identity-resolution-service/internal/system/log"
)

// OverrideServiceInterface is the merge coordination contract. Merge either
// fully succeeds, immediately visible to readers, or fully fails with a
// typed reason; it never retries internally and never leaves partial state.
type OverrideServiceInterface interface {
	Merge(tenantID, oldToken, newToken string, oldestEventAt time.Time) error
	ResolveCanonical(tenantID, token string) (string, error)
	ListOverrides(tenantID string) ([]model.OverrideEdge, error)
}

// OverrideService is the default implementation of OverrideServiceInterface.
type OverrideService struct{}

// GetOverrideService returns the override service instance.
func GetOverrideService() OverrideServiceInterface {
	return &OverrideService{}
}

// Merge declares that oldToken has been superseded by newToken within the
// tenant. Inside one transaction it resolves or creates both mappings,
// inserts the new edge, locks and records both identities' roles, then
// redirects every edge that targeted the old identity to the new one. The
// store is the final arbiter: a commit that would leave an identity acting
// as both source and target, or a source with two active edges, is rejected
// wholesale and surfaced as a ConflictError.
func (s *OverrideService) Merge(tenantID, oldToken, newToken string, oldestEventAt time.Time) error {

	logger := log.GetLogger()

	if tenantID == "" || oldToken == "" || newToken == "" {
		return errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: "Tenant and both identity tokens are required for a merge.",
		}, http.StatusBadRequest)
	}
	if oldestEventAt.IsZero() {
		return errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: "Oldest event watermark is required for a merge.",
		}, http.StatusBadRequest)
	}

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get database client for merge in tenant: %s", tenantID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DB_CLIENT_INIT.Code,
			Message:     errors2.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	tx, err := dbClient.BeginTx()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to begin merge transaction in tenant: %s", tenantID)
		logger.Debug(errorMsg, log.Error(err))
		return client.ClassifyDBError(err, errors2.BEGIN_TRANSACTION, errorMsg)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	oldID, err := mappingStore.GetOrCreateMappingTx(tx, tenantID, oldToken)
	if err != nil {
		return err
	}
	newID, err := mappingStore.GetOrCreateMappingTx(tx, tenantID, newToken)
	if err != nil {
		return err
	}

	if err := store.InsertOverrideEdgeTx(tx, tenantID, oldID, newID, oldestEventAt); err != nil {
		return err
	}

	// Role rows are locked in surrogate order, and before the rewrite:
	// merges contending for a shared role row serialize on it, and the one
	// that waited re-reads the committed role. Rewriting afterwards means a
	// promotion that won such a wait also redirects the edges the other
	// merge committed in the meantime.
	if oldID < newID {
		if err := store.AssignSourceRoleTx(tx, tenantID, oldID); err != nil {
			return err
		}
		if err := store.AssignTargetRoleTx(tx, tenantID, newID); err != nil {
			return err
		}
	} else {
		if err := store.AssignTargetRoleTx(tx, tenantID, newID); err != nil {
			return err
		}
		if err := store.AssignSourceRoleTx(tx, tenantID, oldID); err != nil {
			return err
		}
	}

	// Transitive-closure maintenance: anything that resolved to the old
	// identity must now resolve to the new one, in a single hop.
	rewritten, err := store.RewriteOverrideTargetsTx(tx, tenantID, oldID, newID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		errorMsg := fmt.Sprintf("Failed to commit merge in tenant: %s", tenantID)
		logger.Debug(errorMsg, log.Error(err))
		return client.ClassifyDBError(err, errors2.COMMIT_TRANSACTION, errorMsg)
	}
	committed = true

	logger.Info("Identity merge committed",
		log.String("tenant", tenantID),
		log.Int64("rewritten_edges", rewritten))
	return nil
}

// ResolveCanonical returns the canonical token an identity token resolves
// to, reading the latest committed snapshot. A token without an override
// edge is already canonical.
func (s *OverrideService) ResolveCanonical(tenantID, token string) (string, error) {

	if tenantID == "" || token == "" {
		return "", errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: "Tenant and identity token are required for a lookup.",
		}, http.StatusBadRequest)
	}

	return store.ResolveCanonicalToken(tenantID, token)
}

// ListOverrides returns every active override edge of the tenant.
func (s *OverrideService) ListOverrides(tenantID string) ([]model.OverrideEdge, error) {

	return store.ListOverrideEdges(tenantID)
}
