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

package scripts

var InsertIdentityMapping = map[string]string{
	"postgres": `INSERT INTO identity_mappings (tenant_id, external_token) VALUES ($1, $2)
        ON CONFLICT (tenant_id, external_token) DO NOTHING RETURNING mapping_id`,
}

var GetIdentityMapping = map[string]string{
	"postgres": `SELECT mapping_id FROM identity_mappings WHERE tenant_id = $1 AND external_token = $2`,
}

var InsertOverrideEdge = map[string]string{
	"postgres": `INSERT INTO identity_overrides (tenant_id, source_mapping_id, target_mapping_id, oldest_event_at, version)
        VALUES ($1, $2, $3, $4, 1)`,
}

var RewriteOverrideTargets = map[string]string{
	"postgres": `UPDATE identity_overrides SET target_mapping_id = $1, version = version + 1
        WHERE tenant_id = $2 AND target_mapping_id = $3`,
}

// Both role statements are locking upserts: on conflict they UPDATE the
// existing row (an identity update where nothing changes), which takes the
// row lock and re-reads the committed role after any concurrent writer
// commits. A plain read-back would not arbitrate against a concurrent
// promotion of the same row.
var UpsertSourceRole = map[string]string{
	"postgres": `INSERT INTO override_roles (tenant_id, mapping_id, role) VALUES ($1, $2, 'source')
        ON CONFLICT (tenant_id, mapping_id) DO UPDATE SET role = 'source'
        WHERE override_roles.role = 'target'
        RETURNING role`,
}

var UpsertTargetRole = map[string]string{
	"postgres": `INSERT INTO override_roles (tenant_id, mapping_id, role) VALUES ($1, $2, 'target')
        ON CONFLICT (tenant_id, mapping_id) DO UPDATE SET role = override_roles.role
        RETURNING role`,
}

var ResolveCanonicalToken = map[string]string{
	"postgres": `SELECT COALESCE(t.external_token, m.external_token) AS canonical_token
        FROM identity_mappings m
        LEFT JOIN identity_overrides o ON o.tenant_id = m.tenant_id AND o.source_mapping_id = m.mapping_id
        LEFT JOIN identity_mappings t ON t.mapping_id = o.target_mapping_id
        WHERE m.tenant_id = $1 AND m.external_token = $2`,
}

var ListOverrideEdges = map[string]string{
	"postgres": `SELECT o.tenant_id, s.external_token AS source_token, t.external_token AS target_token,
               o.oldest_event_at, o.version
        FROM identity_overrides o
        JOIN identity_mappings s ON s.mapping_id = o.source_mapping_id
        JOIN identity_mappings t ON t.mapping_id = o.target_mapping_id
        WHERE o.tenant_id = $1
        ORDER BY s.external_token`,
}
