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

	"github.com/wso2/identity-resolution-service/internal/mappings/model"
	"github.com/wso2/identity-resolution-service/internal/system/database/client"
	"github.com/wso2/identity-resolution-service/internal/system/database/provider"
	"github.com/wso2/identity-resolution-service/internal/system/database/scripts"
	errors2 "github.com/wso2/identity-resolution-service/internal/system/errors"
	"github.com/wso2/identity-resolution-service/internal/system/log"
)

// GetOrCreateMappingTx resolves the surrogate key for a (tenant, token) pair
// inside the given transaction, creating the mapping row if it does not
// exist. Implemented as insert-ignore-conflict-then-select so that
// concurrent creators converge on the same surrogate: the insert parks on a
// racing uncommitted row and, once that row commits, the select picks it up.
func GetOrCreateMappingTx(tx *sql.Tx, tenantID, externalToken string) (int64, error) {

	dbType := provider.NewDBProvider().GetDBType()

	var mappingID int64
	err := tx.QueryRow(scripts.InsertIdentityMapping[dbType], tenantID, externalToken).Scan(&mappingID)
	if err == nil {
		return mappingID, nil
	}
	if err != sql.ErrNoRows {
		return 0, wrapMappingError(err, tenantID, externalToken)
	}

	// The row already exists; re-select it.
	err = tx.QueryRow(scripts.GetIdentityMapping[dbType], tenantID, externalToken).Scan(&mappingID)
	if err != nil {
		return 0, wrapMappingError(err, tenantID, externalToken)
	}
	return mappingID, nil
}

// GetOrCreateMapping is the standalone form of GetOrCreateMappingTx, running
// in its own transaction. It is idempotent: the same (tenant, token) pair
// always yields the same surrogate.
func GetOrCreateMapping(tenantID, externalToken string) (int64, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get database client for mapping token in tenant: %s", tenantID)
		logger.Debug(errorMsg, log.Error(err))
		return 0, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DB_CLIENT_INIT.Code,
			Message:     errors2.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	tx, err := dbClient.BeginTx()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to begin transaction for mapping token in tenant: %s", tenantID)
		logger.Debug(errorMsg, log.Error(err))
		return 0, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.BEGIN_TRANSACTION.Code,
			Message:     errors2.BEGIN_TRANSACTION.Message,
			Description: errorMsg,
		}, err)
	}

	mappingID, err := GetOrCreateMappingTx(tx, tenantID, externalToken)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		errorMsg := fmt.Sprintf("Failed to commit mapping for token in tenant: %s", tenantID)
		logger.Debug(errorMsg, log.Error(err))
		return 0, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.COMMIT_TRANSACTION.Code,
			Message:     errors2.COMMIT_TRANSACTION.Message,
			Description: errorMsg,
		}, err)
	}
	return mappingID, nil
}

// GetMapping fetches an existing mapping, or nil when the token has never
// been seen in the tenant.
func GetMapping(tenantID, externalToken string) (*model.IdentityMapping, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get database client for fetching mapping in tenant: %s", tenantID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DB_CLIENT_INIT.Code,
			Message:     errors2.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	dbType := provider.NewDBProvider().GetDBType()
	rows, err := dbClient.ExecuteQuery(scripts.GetIdentityMapping[dbType], tenantID, externalToken)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed in fetching mapping in tenant: %s", tenantID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_MAPPING.Code,
			Message:     errors2.GET_MAPPING.Message,
			Description: errorMsg,
		}, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	mappingID, ok := rows[0]["mapping_id"].(int64)
	if !ok {
		errorMsg := fmt.Sprintf("Unexpected mapping_id type for token in tenant: %s", tenantID)
		logger.Debug(errorMsg)
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_MAPPING.Code,
			Message:     errors2.GET_MAPPING.Message,
			Description: errorMsg,
		}, nil)
	}
	return &model.IdentityMapping{
		MappingID:     mappingID,
		TenantID:      tenantID,
		ExternalToken: externalToken,
	}, nil
}

func wrapMappingError(err error, tenantID, externalToken string) error {

	logger := log.GetLogger()
	errorMsg := fmt.Sprintf("Failed to resolve mapping for token: %s in tenant: %s", externalToken, tenantID)
	logger.Debug(errorMsg, log.Error(err))
	return client.ClassifyDBError(err, errors2.GET_MAPPING, errorMsg)
}
