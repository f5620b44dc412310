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

import "time"

// OverrideEdge states that one identity has been superseded by another.
// Within a tenant a source has at most one active edge, and no identity is
// ever both a source and a target; the chain rewriter keeps every edge one
// hop from canonical.
type OverrideEdge struct {
	TenantID      string    `json:"tenant_id"`
	SourceToken   string    `json:"source_token"`
	TargetToken   string    `json:"target_token"`
	OldestEventAt time.Time `json:"oldest_event_at"`
	Version       int       `json:"version"`
}

// MergeRequest is the inbound payload for a merge call.
type MergeRequest struct {
	OldToken      string    `json:"old_token"`
	NewToken      string    `json:"new_token"`
	OldestEventAt time.Time `json:"oldest_event_at"`
}

// ResolveResponse is the outbound payload of a canonical lookup.
type ResolveResponse struct {
	Token          string `json:"token"`
	CanonicalToken string `json:"canonical_token"`
}
