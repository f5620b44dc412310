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

package constants

type contextKey string

const (
	// TraceIDContextKey is the context key used to carry the request trace ID.
	TraceIDContextKey contextKey = "traceID"
	// TenantContextKey is the context key used to carry the resolved tenant.
	TenantContextKey contextKey = "tenantID"
)

const (
	ApiBasePath   = "/api/v1"
	DefaultTenant = "carbon.super"
)

// Database types supported by the query scripts.
const (
	DBTypePostgres = "postgres"
)

// Override roles. Within a tenant every mapping that participates in
// overrides holds exactly one role at a time.
const (
	RoleSource = "source"
	RoleTarget = "target"
)

// SchemaFilePath is the database schema applied at startup, relative to the
// service home directory.
const SchemaFilePath = "dbscripts/postgres.sql"

// SchemaInitLockKey guards concurrent schema application when several
// instances start against the same database.
const SchemaInitLockKey = "irs-schema-init"
