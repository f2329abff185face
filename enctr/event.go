// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package enctr

// Event is a notification emitted by a contract during a call.
// Args are kept in declaration order of the event.
type Event struct {
	Address Address `json:"address"`
	Name    string  `json:"name"`
	Args    []any   `json:"args"`
}
