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
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wso2/identity-resolution-service/internal/system/config"
	errors2 "github.com/wso2/identity-resolution-service/internal/system/errors"
	"github.com/wso2/identity-resolution-service/internal/system/log"
)

// ValidateAuthentication validates the Authorization: Bearer token on the
// request for the given tenant. Validation is skipped when auth is disabled
// in the deployment configuration.
func ValidateAuthentication(r *http.Request, tenant string) error {

	cfg := config.GetIRSRuntime().Config.Auth
	if !cfg.Enabled {
		return nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return unauthorizedError()
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

	claims, err := parseAndVerify(token, cfg.JWTSecret)
	if err != nil {
		return unauthorizedError()
	}

	if !validateClaims(tenant, cfg.Audience, claims) {
		return unauthorizedError()
	}

	return nil
}

// parseAndVerify parses the JWT and verifies its HMAC signature. Expiry is
// checked by the parser itself.
func parseAndVerify(tokenString, secret string) (jwt.MapClaims, error) {

	logger := log.GetLogger()
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		logger.Debug("Error occurred when parsing the JWT token.", log.Error(err))
		return nil, err
	}
	return claims, nil
}

// validateClaims ensures the token carries the expected audience and tenant.
func validateClaims(tenant, expectedAudience string, claims jwt.MapClaims) bool {

	logger := log.GetLogger()

	tenantInClaimRaw, ok := claims["tenant"]
	if !ok {
		logger.Debug("Token does not have the expected tenant claim.")
		return false
	}
	tenantInClaim, ok := tenantInClaimRaw.(string)
	if !ok || tenantInClaim != tenant {
		logger.Debug("Token tenant claim is not valid.")
		return false
	}

	if expectedAudience != "" {
		audiences, err := claims.GetAudience()
		if err != nil {
			logger.Debug("Token audience claim could not be read.", log.Error(err))
			return false
		}
		for _, aud := range audiences {
			if aud == expectedAudience {
				return true
			}
		}
		logger.Debug("Token does not have the expected audience.")
		return false
	}

	return true
}

func unauthorizedError() error {
	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.UN_AUTHORIZED.Code,
		Message:     errors2.UN_AUTHORIZED.Message,
		Description: errors2.UN_AUTHORIZED.Description,
	}, http.StatusUnauthorized)
}
