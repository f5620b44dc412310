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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	overrideService "github.com/wso2/identity-resolution-service/internal/overrides/service"
	errors2 "github.com/wso2/identity-resolution-service/internal/system/errors"
)

// Two merges whose edges overlap on one identity race each other. The store
// serializes them: whichever commits first wins, and a loser must surface a
// conflict, never partial state.
func Test_Merge_Overlapping_Race(t *testing.T) {

	svc := overrideService.GetOverrideService()

	for round := 0; round < 10; round++ {
		tenant := fmt.Sprintf("carbon.super-%d-%d", time.Now().UnixNano(), round)

		var wg sync.WaitGroup
		var errFirst, errSecond error

		wg.Add(2)
		go func() {
			defer wg.Done()
			errFirst = svc.Merge(tenant, "race-a", "race-b", time.Now())
		}()
		go func() {
			defer wg.Done()
			errSecond = svc.Merge(tenant, "race-b", "race-c", time.Now())
		}()
		wg.Wait()

		for _, err := range []error{errFirst, errSecond} {
			if err != nil {
				var conflict *errors2.ConflictError
				require.ErrorAs(t, err, &conflict,
					"a losing merge may only fail with a conflict")
			}
		}
		require.True(t, errFirst == nil || errSecond == nil,
			"at least one merge must commit")

		assertOverrideInvariants(t, tenant)

		// Whatever the interleaving, every surviving edge must already
		// point at a canonical identity.
		edges, err := svc.ListOverrides(tenant)
		require.NoError(t, err)
		require.NotEmpty(t, edges)
		for _, edge := range edges {
			canonical, err := svc.ResolveCanonical(tenant, edge.TargetToken)
			require.NoError(t, err)
			require.Equal(t, edge.TargetToken, canonical)
		}

		if errFirst == nil && errSecond == nil {
			// Both committed, so the first merge was flattened through
			// the second one's target.
			require.Len(t, edges, 2)
			for _, edge := range edges {
				require.Equal(t, "race-c", edge.TargetToken)
			}
		}
	}
}

// A merge absorbing into an identity that is already someone's canonical
// target races a merge superseding that same identity. The shared role row
// is the arbitration point: whoever locks it second must either observe the
// promotion and conflict, or promote after the absorbing edge committed and
// rewrite that edge along with the rest.
func Test_Merge_Race_Into_Existing_Target(t *testing.T) {

	svc := overrideService.GetOverrideService()

	for round := 0; round < 10; round++ {
		tenant := fmt.Sprintf("carbon.super-%d-%d", time.Now().UnixNano(), round)
		require.NoError(t, svc.Merge(tenant, "seed-a", "hub-b", time.Now()))

		var wg sync.WaitGroup
		var errSupersede, errAbsorb error

		wg.Add(2)
		go func() {
			defer wg.Done()
			errSupersede = svc.Merge(tenant, "hub-b", "succ-c", time.Now())
		}()
		go func() {
			defer wg.Done()
			errAbsorb = svc.Merge(tenant, "late-d", "hub-b", time.Now())
		}()
		wg.Wait()

		for _, err := range []error{errSupersede, errAbsorb} {
			if err != nil {
				var conflict *errors2.ConflictError
				require.ErrorAs(t, err, &conflict,
					"a losing merge may only fail with a conflict")
			}
		}
		require.True(t, errSupersede == nil || errAbsorb == nil,
			"at least one merge must commit")

		assertOverrideInvariants(t, tenant)

		edges, err := svc.ListOverrides(tenant)
		require.NoError(t, err)
		for _, edge := range edges {
			canonical, err := svc.ResolveCanonical(tenant, edge.TargetToken)
			require.NoError(t, err)
			require.Equal(t, edge.TargetToken, canonical,
				"every edge must point at a canonical identity")
		}

		if errSupersede == nil {
			canonical, err := svc.ResolveCanonical(tenant, "seed-a")
			require.NoError(t, err)
			require.Equal(t, "succ-c", canonical)
		}
		if errAbsorb == nil {
			canonical, err := svc.ResolveCanonical(tenant, "late-d")
			require.NoError(t, err)
			if errSupersede == nil {
				// The superseding merge committed after the absorbing one
				// and flattened its edge too.
				require.Equal(t, "succ-c", canonical)
			} else {
				require.Equal(t, "hub-b", canonical)
			}
		}
	}
}

// Many sources absorbed into one canonical identity at once. None of these
// merges overlap on a source, so all of them must commit.
func Test_Merge_Concurrent_Shared_Target(t *testing.T) {

	svc := overrideService.GetOverrideService()
	tenant := fmt.Sprintf("carbon.super-%d", time.Now().UnixNano())
	const workers = 12

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Merge(tenant, fmt.Sprintf("device-%d", i), "user-heidi", time.Now())
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
	}

	edges, err := svc.ListOverrides(tenant)
	require.NoError(t, err)
	require.Len(t, edges, workers)
	for _, edge := range edges {
		require.Equal(t, "user-heidi", edge.TargetToken)
	}

	assertOverrideInvariants(t, tenant)
}

// Identical merges fired concurrently: exactly one wins, the rest conflict,
// and a single edge remains.
func Test_Merge_Concurrent_Duplicates(t *testing.T) {

	svc := overrideService.GetOverrideService()
	tenant := fmt.Sprintf("carbon.super-%d", time.Now().UnixNano())
	const workers = 8

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Merge(tenant, "dup-source", "dup-target", time.Now())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i := 0; i < workers; i++ {
		if errs[i] == nil {
			succeeded++
			continue
		}
		var conflict *errors2.ConflictError
		require.ErrorAs(t, errs[i], &conflict)
	}
	require.Equal(t, 1, succeeded)

	edges, err := svc.ListOverrides(tenant)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Equal(t, 1, edges[0].Version)

	assertOverrideInvariants(t, tenant)
}
