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

package integration

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wso2/identity-resolution-service/internal/overrides/model"
	overrideService "github.com/wso2/identity-resolution-service/internal/overrides/service"
	errors2 "github.com/wso2/identity-resolution-service/internal/system/errors"
)

func edgeBySource(edges []model.OverrideEdge, sourceToken string) *model.OverrideEdge {
	for i := range edges {
		if edges[i].SourceToken == sourceToken {
			return &edges[i]
		}
	}
	return nil
}

// assertOverrideInvariants checks the two structural guarantees directly on
// the tables: no surrogate acts as both a source and a target, and no source
// carries more than one active edge.
func assertOverrideInvariants(t *testing.T, tenant string) {
	t.Helper()

	var overlapping int
	err := testDB.QueryRow(`
		SELECT COUNT(*) FROM identity_overrides o
		WHERE o.tenant_id = $1
		  AND o.target_mapping_id IN (
		      SELECT source_mapping_id FROM identity_overrides WHERE tenant_id = $1)`,
		tenant).Scan(&overlapping)
	require.NoError(t, err)
	require.Zero(t, overlapping, "a target surrogate must never also be a source")

	var duplicated int
	err = testDB.QueryRow(`
		SELECT COUNT(*) FROM (
		    SELECT source_mapping_id FROM identity_overrides
		    WHERE tenant_id = $1
		    GROUP BY source_mapping_id HAVING COUNT(*) > 1) d`,
		tenant).Scan(&duplicated)
	require.NoError(t, err)
	require.Zero(t, duplicated, "a source surrogate must carry exactly one edge")
}

func Test_Merge_Scenarios(t *testing.T) {

	svc := overrideService.GetOverrideService()

	t.Run("First merge records a version one edge with its watermark", func(t *testing.T) {
		tenant := fmt.Sprintf("carbon.super-%d", time.Now().UnixNano())
		watermark := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

		err := svc.Merge(tenant, "anon-111", "user-alice", watermark)
		require.NoError(t, err)

		edges, err := svc.ListOverrides(tenant)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		require.Equal(t, "anon-111", edges[0].SourceToken)
		require.Equal(t, "user-alice", edges[0].TargetToken)
		require.Equal(t, 1, edges[0].Version)
		require.WithinDuration(t, watermark, edges[0].OldestEventAt, time.Millisecond)

		assertOverrideInvariants(t, tenant)
	})

	t.Run("A source cannot be merged a second time", func(t *testing.T) {
		tenant := fmt.Sprintf("carbon.super-%d", time.Now().UnixNano())

		err := svc.Merge(tenant, "anon-222", "user-bob", time.Now())
		require.NoError(t, err)

		err = svc.Merge(tenant, "anon-222", "user-carol", time.Now())
		var conflict *errors2.ConflictError
		require.ErrorAs(t, err, &conflict)

		// The rejected merge must leave no trace.
		edges, listErr := svc.ListOverrides(tenant)
		require.NoError(t, listErr)
		require.Len(t, edges, 1)
		require.Equal(t, "user-bob", edges[0].TargetToken)

		assertOverrideInvariants(t, tenant)
	})

	t.Run("A token cannot be merged into itself", func(t *testing.T) {
		tenant := fmt.Sprintf("carbon.super-%d", time.Now().UnixNano())

		err := svc.Merge(tenant, "anon-333", "anon-333", time.Now())
		var conflict *errors2.ConflictError
		require.ErrorAs(t, err, &conflict)

		edges, listErr := svc.ListOverrides(tenant)
		require.NoError(t, listErr)
		require.Empty(t, edges)
	})

	t.Run("Merging into a superseded token is rejected", func(t *testing.T) {
		tenant := fmt.Sprintf("carbon.super-%d", time.Now().UnixNano())

		err := svc.Merge(tenant, "anon-444", "user-dave", time.Now())
		require.NoError(t, err)

		// anon-444 is already superseded and can no longer absorb others.
		err = svc.Merge(tenant, "anon-555", "anon-444", time.Now())
		var conflict *errors2.ConflictError
		require.ErrorAs(t, err, &conflict)

		assertOverrideInvariants(t, tenant)
	})

	t.Run("Chained merges collapse to a single hop", func(t *testing.T) {
		tenant := fmt.Sprintf("carbon.super-%d", time.Now().UnixNano())
		firstWatermark := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
		secondWatermark := time.Date(2025, 2, 6, 0, 0, 0, 0, time.UTC)

		require.NoError(t, svc.Merge(tenant, "token-a", "token-b", firstWatermark))
		require.NoError(t, svc.Merge(tenant, "token-b", "token-c", secondWatermark))

		edges, err := svc.ListOverrides(tenant)
		require.NoError(t, err)
		require.Len(t, edges, 2)

		// The rewritten edge keeps its watermark but advances its version.
		rewritten := edgeBySource(edges, "token-a")
		require.NotNil(t, rewritten)
		require.Equal(t, "token-c", rewritten.TargetToken)
		require.Equal(t, 2, rewritten.Version)
		require.WithinDuration(t, firstWatermark, rewritten.OldestEventAt, time.Millisecond)

		fresh := edgeBySource(edges, "token-b")
		require.NotNil(t, fresh)
		require.Equal(t, "token-c", fresh.TargetToken)
		require.Equal(t, 1, fresh.Version)
		require.WithinDuration(t, secondWatermark, fresh.OldestEventAt, time.Millisecond)

		// Nothing may still point at the intermediate identity.
		var targetingIntermediate int
		err = testDB.QueryRow(`
			SELECT COUNT(*) FROM identity_overrides o
			JOIN identity_mappings m ON m.mapping_id = o.target_mapping_id
			WHERE o.tenant_id = $1 AND m.external_token = $2`,
			tenant, "token-b").Scan(&targetingIntermediate)
		require.NoError(t, err)
		require.Zero(t, targetingIntermediate)

		assertOverrideInvariants(t, tenant)
	})

	t.Run("Two sources may share one canonical target", func(t *testing.T) {
		tenant := fmt.Sprintf("carbon.super-%d", time.Now().UnixNano())

		require.NoError(t, svc.Merge(tenant, "anon-666", "user-eve", time.Now()))
		require.NoError(t, svc.Merge(tenant, "anon-777", "user-eve", time.Now()))

		edges, err := svc.ListOverrides(tenant)
		require.NoError(t, err)
		require.Len(t, edges, 2)
		for _, edge := range edges {
			require.Equal(t, "user-eve", edge.TargetToken)
		}

		assertOverrideInvariants(t, tenant)
	})

	t.Run("Tenants do not see each other's merges", func(t *testing.T) {
		tenantA := fmt.Sprintf("carbon.super-%d-a", time.Now().UnixNano())
		tenantB := fmt.Sprintf("carbon.super-%d-b", time.Now().UnixNano())

		require.NoError(t, svc.Merge(tenantA, "token-x", "token-y", time.Now()))

		// The same pair merged the opposite way is legal in another tenant.
		require.NoError(t, svc.Merge(tenantB, "token-y", "token-x", time.Now()))

		canonicalA, err := svc.ResolveCanonical(tenantA, "token-x")
		require.NoError(t, err)
		require.Equal(t, "token-y", canonicalA)

		canonicalB, err := svc.ResolveCanonical(tenantB, "token-y")
		require.NoError(t, err)
		require.Equal(t, "token-x", canonicalB)

		assertOverrideInvariants(t, tenantA)
		assertOverrideInvariants(t, tenantB)
	})

	t.Run("Merge requires tokens and a watermark", func(t *testing.T) {
		tenant := fmt.Sprintf("carbon.super-%d", time.Now().UnixNano())

		err := svc.Merge(tenant, "", "user-frank", time.Now())
		var clientErr *errors2.ClientError
		require.ErrorAs(t, err, &clientErr)

		err = svc.Merge(tenant, "anon-888", "user-frank", time.Time{})
		require.ErrorAs(t, err, &clientErr)
	})
}
