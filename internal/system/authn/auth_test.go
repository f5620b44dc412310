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

package authn

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/wso2/identity-resolution-service/internal/system/config"
	"github.com/wso2/identity-resolution-service/internal/system/log"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func overrideAuthConfig(enabled bool, audience string) {
	config.OverrideIRSRuntime(config.Config{
		Auth: config.AuthConfig{
			Enabled:   enabled,
			JWTSecret: testSecret,
			Audience:  audience,
		},
	})
}

func TestValidateAuthentication(t *testing.T) {

	_ = log.Init("ERROR")

	t.Run("Disabled auth admits any request", func(t *testing.T) {
		overrideAuthConfig(false, "")
		r := httptest.NewRequest("GET", "/identity-overrides", nil)
		require.NoError(t, ValidateAuthentication(r, "carbon.super"))
	})

	t.Run("Missing bearer token is rejected", func(t *testing.T) {
		overrideAuthConfig(true, "")
		r := httptest.NewRequest("GET", "/identity-overrides", nil)
		require.Error(t, ValidateAuthentication(r, "carbon.super"))
	})

	t.Run("Valid token for the tenant is accepted", func(t *testing.T) {
		overrideAuthConfig(true, "identity-resolution-service")
		token := signToken(t, jwt.MapClaims{
			"tenant": "carbon.super",
			"aud":    "identity-resolution-service",
			"exp":    time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		r := httptest.NewRequest("GET", "/identity-overrides", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		require.NoError(t, ValidateAuthentication(r, "carbon.super"))
	})

	t.Run("Token for another tenant is rejected", func(t *testing.T) {
		overrideAuthConfig(true, "")
		token := signToken(t, jwt.MapClaims{
			"tenant": "other.tenant",
			"exp":    time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		r := httptest.NewRequest("GET", "/identity-overrides", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		require.Error(t, ValidateAuthentication(r, "carbon.super"))
	})

	t.Run("Wrong audience is rejected", func(t *testing.T) {
		overrideAuthConfig(true, "identity-resolution-service")
		token := signToken(t, jwt.MapClaims{
			"tenant": "carbon.super",
			"aud":    "some-other-service",
			"exp":    time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		r := httptest.NewRequest("GET", "/identity-overrides", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		require.Error(t, ValidateAuthentication(r, "carbon.super"))
	})

	t.Run("Expired token is rejected", func(t *testing.T) {
		overrideAuthConfig(true, "")
		token := signToken(t, jwt.MapClaims{
			"tenant": "carbon.super",
			"exp":    time.Now().Add(-time.Hour).Unix(),
		}, testSecret)

		r := httptest.NewRequest("GET", "/identity-overrides", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		require.Error(t, ValidateAuthentication(r, "carbon.super"))
	})

	t.Run("Token signed with a different key is rejected", func(t *testing.T) {
		overrideAuthConfig(true, "")
		token := signToken(t, jwt.MapClaims{
			"tenant": "carbon.super",
			"exp":    time.Now().Add(time.Hour).Unix(),
		}, "not-the-configured-secret")

		r := httptest.NewRequest("GET", "/identity-overrides", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		require.Error(t, ValidateAuthentication(r, "carbon.super"))
	})
}
