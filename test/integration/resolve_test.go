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
	mappingStore "github.com/wso2/identity-resolution-service/internal/mappings/store"
	overrideService "github.com/wso2/identity-resolution-service/internal/overrides/service"
	errors2 "github.com/wso2/identity-resolution-service/internal/system/errors"
)

func Test_Resolve_Canonical_Scenarios(t *testing.T) {

	svc := overrideService.GetOverrideService()
	tenant := fmt.Sprintf("carbon.super-%d", time.Now().UnixNano())

	t.Run("A token without an override resolves to itself", func(t *testing.T) {
		_, err := mappingStore.GetOrCreateMapping(tenant, "lonely-token")
		require.NoError(t, err)

		canonical, err := svc.ResolveCanonical(tenant, "lonely-token")
		require.NoError(t, err)
		require.Equal(t, "lonely-token", canonical)
	})

	t.Run("A superseded token resolves to its canonical identity", func(t *testing.T) {
		require.NoError(t, svc.Merge(tenant, "anon-aaa", "user-grace", time.Now()))

		canonical, err := svc.ResolveCanonical(tenant, "anon-aaa")
		require.NoError(t, err)
		require.Equal(t, "user-grace", canonical)

		// The canonical identity resolves to itself.
		canonical, err = svc.ResolveCanonical(tenant, "user-grace")
		require.NoError(t, err)
		require.Equal(t, "user-grace", canonical)
	})

	t.Run("Every link of a collapsed chain resolves in one hop", func(t *testing.T) {
		require.NoError(t, svc.Merge(tenant, "chain-1", "chain-2", time.Now()))
		require.NoError(t, svc.Merge(tenant, "chain-2", "chain-3", time.Now()))

		for _, token := range []string{"chain-1", "chain-2", "chain-3"} {
			canonical, err := svc.ResolveCanonical(tenant, token)
			require.NoError(t, err)
			require.Equal(t, "chain-3", canonical)
		}
	})

	t.Run("An unseen token is reported as not found", func(t *testing.T) {
		_, err := svc.ResolveCanonical(tenant, "ghost-token")
		var notFound *errors2.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("Resolution respects the tenant boundary", func(t *testing.T) {
		otherTenant := tenant + "-other"
		_, err := svc.ResolveCanonical(otherTenant, "anon-aaa")
		var notFound *errors2.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}
