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

package model

// IdentityMapping binds an externally-visible identity token to the internal
// surrogate key used for joins. Mappings are created lazily, never updated
// and never deleted; a surrogate is stable for the lifetime of the tenant.
type IdentityMapping struct {
	MappingID     int64  `json:"mapping_id"`
	TenantID      string `json:"tenant_id"`
	ExternalToken string `json:"external_token"`
}
