/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package climod

import "fmt"

// RunList fetches and prints the follower table.
func RunList(client *Client) {
	rows, err := client.ListFollowers()
	if err != nil {
		ErrConnectionFailed("admin surface", err).Print()
		return
	}

	table := NewTable("IP", "LAST HEARTBEAT SEND (ns)", "LATENCY (ns)", "PHI", "FAILED")
	for _, row := range rows {
		latency := "-"
		if row.HasLatency {
			latency = fmt.Sprintf("%d", row.LatencyNs)
		}
		table.AddRow(
			row.IP,
			fmt.Sprintf("%d", row.LastHeartbeatSend),
			latency,
			fmt.Sprintf("%.2f", row.Phi),
			fmt.Sprintf("%v", row.Failed),
		)
	}
	table.Print()
}

// RunAdd adds a follower and reports the outcome.
func RunAdd(client *Client, ip string) {
	if err := client.AddFollower(ip); err != nil {
		ErrConnectionFailed("admin surface", err).Print()
		return
	}
	PrintSuccess("added follower %s", ip)
}

// RunRemove removes a follower and reports the outcome.
func RunRemove(client *Client, ip string) {
	if err := client.RemoveFollower(ip); err != nil {
		ErrConnectionFailed("admin surface", err).Print()
		return
	}
	PrintSuccess("removed follower %s", ip)
}

// RunAudit fetches and prints the n most recent audit events.
func RunAudit(client *Client, n int) {
	events, err := client.RecentAudit()
	if err != nil {
		ErrConnectionFailed("admin surface", err).Print()
		return
	}
	if n < len(events) {
		events = events[:n]
	}

	table := NewTable("TIME", "TYPE", "DETAIL")
	for _, e := range events {
		table.AddRow(e.Time.Format("15:04:05.000"), e.Type, e.Detail)
	}
	table.Print()
}

// RunHealth checks and prints the node's readiness.
func RunHealth(client *Client) {
	ready, err := client.Healthz()
	if err != nil {
		ErrConnectionFailed("admin surface", err).Print()
		return
	}
	if ready {
		PrintSuccess("node is ready")
	} else {
		PrintWarning("node is not ready")
	}
}
