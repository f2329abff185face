// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages contract storage of the protocol.
// It follows the flow as bellow:
//
//	         o
//	         |
//	[ revertable state ]
//	         |
//	  [ stacked map ] -> [ journal ] -> [ commit ] -> [ kv store ]
//	         |
//	   [ slot cache ]
//	         |
//	   [ kv store ]
//
// Events emitted by contracts live in the stacked map as well, so a revert
// drops them together with the storage writes of the reverted call.
package state
