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

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wso2/identity-resolution-service/internal/overrides/model"
	"github.com/wso2/identity-resolution-service/internal/system/constants"
	"github.com/wso2/identity-resolution-service/internal/system/database/client"
	"github.com/wso2/identity-resolution-service/internal/system/database/provider"
	"github.com/wso2/identity-resolution-service/internal/system/database/scripts"
	errors2 "github.com/wso2/identity-resolution-service/internal/system/errors"
	"github.com/wso2/identity-resolution-service/internal/system/log"
)

// InsertOverrideEdgeTx records a new override edge source -> target with
// version 1. The per-source uniqueness constraint rejects a second active
// edge for the same source.
func InsertOverrideEdgeTx(tx *sql.Tx, tenantID string, sourceID, targetID int64, oldestEventAt time.Time) error {

	dbType := provider.NewDBProvider().GetDBType()
	_, err := tx.Exec(scripts.InsertOverrideEdge[dbType], tenantID, sourceID, targetID, oldestEventAt)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to insert override edge in tenant: %s", tenantID)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return client.ClassifyDBError(err, errors2.ADD_OVERRIDE, errorMsg)
	}
	return nil
}

// RewriteOverrideTargetsTx redirects every edge currently targeting oldID to
// targetID instead, bumping each rewritten edge's version by one. Returns
// the number of rewritten edges; zero is the common case where the
// superseded identity was never a target.
func RewriteOverrideTargetsTx(tx *sql.Tx, tenantID string, oldID, targetID int64) (int64, error) {

	dbType := provider.NewDBProvider().GetDBType()
	result, err := tx.Exec(scripts.RewriteOverrideTargets[dbType], targetID, tenantID, oldID)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to rewrite override chain in tenant: %s", tenantID)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return 0, client.ClassifyDBError(err, errors2.REWRITE_OVERRIDES, errorMsg)
	}
	rewritten, err := result.RowsAffected()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to count rewritten override edges in tenant: %s", tenantID)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return 0, client.ClassifyDBError(err, errors2.REWRITE_OVERRIDES, errorMsg)
	}
	return rewritten, nil
}

// AssignSourceRoleTx records that mappingID now acts as a source. A fresh
// role row is inserted; a mapping holding the target role is promoted in
// place. Either way the upsert holds the row lock, so a concurrent merge
// contending for the same role row waits here and re-reads the committed
// role once this transaction resolves. A mapping that already acts as a
// source yields no row and the merge is rejected.
func AssignSourceRoleTx(tx *sql.Tx, tenantID string, mappingID int64) error {

	dbType := provider.NewDBProvider().GetDBType()

	var role string
	err := tx.QueryRow(scripts.UpsertSourceRole[dbType], tenantID, mappingID).Scan(&role)
	if err == sql.ErrNoRows {
		errorMsg := fmt.Sprintf("Identity has already been superseded and cannot be merged again in tenant: %s",
			tenantID)
		log.GetLogger().Debug(errorMsg)
		return errors2.NewConflictError(errorMsg, nil)
	}
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to record source role in tenant: %s", tenantID)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return client.ClassifyDBError(err, errors2.ADD_OVERRIDE, errorMsg)
	}
	if role != constants.RoleSource {
		errorMsg := fmt.Sprintf("Unexpected role %q recorded for superseded identity in tenant: %s", role, tenantID)
		log.GetLogger().Debug(errorMsg)
		return errors2.NewConflictError(errorMsg, nil)
	}
	return nil
}

// AssignTargetRoleTx records that mappingID now acts as a target. Duplicate
// targets are legal, so an existing target role is kept; but if the mapping
// holds the source role, including one committed by a concurrent merge while
// this transaction waited on the row lock, the merge would chain through a
// superseded identity and is rejected.
func AssignTargetRoleTx(tx *sql.Tx, tenantID string, mappingID int64) error {

	dbType := provider.NewDBProvider().GetDBType()

	var role string
	err := tx.QueryRow(scripts.UpsertTargetRole[dbType], tenantID, mappingID).Scan(&role)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to record target role in tenant: %s", tenantID)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return client.ClassifyDBError(err, errors2.ADD_OVERRIDE, errorMsg)
	}
	if role == constants.RoleSource {
		errorMsg := fmt.Sprintf("Identity has already been superseded and cannot become canonical in tenant: %s",
			tenantID)
		log.GetLogger().Debug(errorMsg)
		return errors2.NewConflictError(errorMsg, nil)
	}
	return nil
}

// ListOverrideEdges returns every active override edge of the tenant with
// tokens resolved, ordered by source token.
func ListOverrideEdges(tenantID string) ([]model.OverrideEdge, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get database client for listing overrides in tenant: %s", tenantID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DB_CLIENT_INIT.Code,
			Message:     errors2.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	dbType := provider.NewDBProvider().GetDBType()
	rows, err := dbClient.ExecuteQuery(scripts.ListOverrideEdges[dbType], tenantID)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed in listing overrides in tenant: %s", tenantID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.LIST_OVERRIDES.Code,
			Message:     errors2.LIST_OVERRIDES.Message,
			Description: errorMsg,
		}, err)
	}

	var edges []model.OverrideEdge
	for _, row := range rows {
		edge, err := mapRowToOverrideEdge(row)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// ResolveCanonicalToken returns the canonical token for the given token, or
// a NotFoundError when the token has never been seen in the tenant. A token
// with no override edge is its own canonical identity.
func ResolveCanonicalToken(tenantID, externalToken string) (string, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get database client for resolving identity in tenant: %s", tenantID)
		logger.Debug(errorMsg, log.Error(err))
		return "", errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DB_CLIENT_INIT.Code,
			Message:     errors2.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	dbType := provider.NewDBProvider().GetDBType()
	rows, err := dbClient.ExecuteQuery(scripts.ResolveCanonicalToken[dbType], tenantID, externalToken)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed in resolving canonical identity in tenant: %s", tenantID)
		logger.Debug(errorMsg, log.Error(err))
		return "", errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.RESOLVE_IDENTITY.Code,
			Message:     errors2.RESOLVE_IDENTITY.Message,
			Description: errorMsg,
		}, err)
	}
	if len(rows) == 0 {
		return "", errors2.NewNotFoundError(
			fmt.Sprintf("Identity token: %s has never been seen in tenant: %s", externalToken, tenantID))
	}

	canonical, ok := rows[0]["canonical_token"].(string)
	if !ok {
		errorMsg := fmt.Sprintf("Unexpected canonical_token type in tenant: %s", tenantID)
		logger.Debug(errorMsg)
		return "", errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.RESOLVE_IDENTITY.Code,
			Message:     errors2.RESOLVE_IDENTITY.Message,
			Description: errorMsg,
		}, nil)
	}
	return canonical, nil
}

func mapRowToOverrideEdge(row map[string]interface{}) (model.OverrideEdge, error) {

	tenantID, _ := row["tenant_id"].(string)
	sourceToken, _ := row["source_token"].(string)
	targetToken, _ := row["target_token"].(string)
	oldestEventAt, _ := row["oldest_event_at"].(time.Time)

	version, ok := row["version"].(int64)
	if !ok {
		errorMsg := fmt.Sprintf("Unexpected version type for override edge in tenant: %s", tenantID)
		log.GetLogger().Debug(errorMsg)
		return model.OverrideEdge{}, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.LIST_OVERRIDES.Code,
			Message:     errors2.LIST_OVERRIDES.Message,
			Description: errorMsg,
		}, nil)
	}

	return model.OverrideEdge{
		TenantID:      tenantID,
		SourceToken:   sourceToken,
		TargetToken:   targetToken,
		OldestEventAt: oldestEventAt,
		Version:       int(version),
	}, nil
}
