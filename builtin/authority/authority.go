// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/builtin/solidity"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/log"
	"github.com/encountr/enctr/state"
)

var (
	logger = log.WithContext("pkg", "authority")

	slotRoles   = solidity.Slot("roles")
	slotPending = solidity.Slot("pending-roles")
)

// Role is a governance capability.
type Role uint8

const (
	Governor Role = iota
	Guardian
	Policy
	Vault
)

var roleNames = [...]string{"Governor", "Guardian", "Policy", "Vault"}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "Unknown"
}

// ParseRole parses a role by name, case-insensitively.
func ParseRole(s string) (Role, error) {
	for i, name := range roleNames {
		if strings.EqualFold(name, s) {
			return Role(i), nil
		}
	}
	return 0, errors.Errorf("unknown role %q", s)
}

func (r Role) Bytes() []byte {
	return []byte{byte(r)}
}

// Authority implements the role registry every governance-gated call consults.
type Authority struct {
	context *solidity.Context
	roles   *solidity.Mapping[Role, enctr.Address]
	pending *solidity.Mapping[Role, enctr.Address]
}

// New create a new instance.
func New(addr enctr.Address, state *state.State) *Authority {
	ctx := solidity.NewContext(addr, state)
	return &Authority{
		context: ctx,
		roles:   solidity.NewMapping[Role, enctr.Address](ctx, slotRoles),
		pending: solidity.NewMapping[Role, enctr.Address](ctx, slotPending),
	}
}

// Address returns the contract address.
func (a *Authority) Address() enctr.Address {
	return a.context.Address()
}

// Initialize assigns the four roles. It can be done once.
func (a *Authority) Initialize(governor, guardian, policy, vault enctr.Address) error {
	current, err := a.Get(Governor)
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.New(reverts.ErrAlreadyInitialized, "Authority: already initialized")
	}
	for role, addr := range []enctr.Address{governor, guardian, policy, vault} {
		if addr.IsZero() {
			return reverts.Newf(reverts.ErrInvalidAddress, "Authority: zero address for %s", Role(role))
		}
		if err := a.roles.Set(Role(role), addr); err != nil {
			return errors.Wrap(err, "failed to set role")
		}
		a.context.Emit(Role(role).String()+"Pushed", enctr.Address{}, addr, true)
		a.context.Emit(Role(role).String()+"Pulled", enctr.Address{}, addr)
	}
	return nil
}

// Get returns the holder of role.
func (a *Authority) Get(role Role) (enctr.Address, error) {
	addr, err := a.roles.Get(role)
	if err != nil {
		return enctr.Address{}, errors.Wrap(err, "failed to get role")
	}
	return addr, nil
}

// Pending returns the address a role was pushed to and that has not pulled it yet.
func (a *Authority) Pending(role Role) (enctr.Address, error) {
	addr, err := a.pending.Get(role)
	if err != nil {
		return enctr.Address{}, errors.Wrap(err, "failed to get pending role")
	}
	return addr, nil
}

// Has tells whether addr holds role.
func (a *Authority) Has(role Role, addr enctr.Address) (bool, error) {
	holder, err := a.Get(role)
	if err != nil {
		return false, err
	}
	return !holder.IsZero() && holder == addr, nil
}

func (a *Authority) IsGovernor(addr enctr.Address) (bool, error) { return a.Has(Governor, addr) }
func (a *Authority) IsGuardian(addr enctr.Address) (bool, error) { return a.Has(Guardian, addr) }
func (a *Authority) IsPolicy(addr enctr.Address) (bool, error)   { return a.Has(Policy, addr) }
func (a *Authority) IsVault(addr enctr.Address) (bool, error)    { return a.Has(Vault, addr) }

// Push hands role to newHolder, right away or once newHolder pulls it.
// Only the governor may push.
func (a *Authority) Push(caller enctr.Address, role Role, newHolder enctr.Address, effectiveImmediately bool) error {
	if err := a.RequireGovernor(caller); err != nil {
		return err
	}
	if newHolder.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "Authority: zero address")
	}
	old, err := a.Get(role)
	if err != nil {
		return err
	}
	if effectiveImmediately {
		if err := a.roles.Set(role, newHolder); err != nil {
			return errors.Wrap(err, "failed to set role")
		}
	}
	if err := a.pending.Set(role, newHolder); err != nil {
		return errors.Wrap(err, "failed to set pending role")
	}
	a.context.Emit(role.String()+"Pushed", old, newHolder, effectiveImmediately)
	logger.Debug("role pushed", "role", role, "to", newHolder, "immediate", effectiveImmediately)
	return nil
}

// Pull completes a push; the caller must be the pending holder.
func (a *Authority) Pull(caller enctr.Address, role Role) error {
	pending, err := a.Pending(role)
	if err != nil {
		return err
	}
	if pending.IsZero() || pending != caller {
		return reverts.Newf(reverts.ErrUnauthorized, "!new%s", role)
	}
	old, err := a.Get(role)
	if err != nil {
		return err
	}
	if err := a.roles.Set(role, caller); err != nil {
		return errors.Wrap(err, "failed to set role")
	}
	a.pending.Delete(role)
	a.context.Emit(role.String()+"Pulled", old, caller)
	logger.Debug("role pulled", "role", role, "by", caller)
	return nil
}

// RequireGovernor rejects callers that are not the governor.
func (a *Authority) RequireGovernor(caller enctr.Address) error {
	return a.require(caller, Governor)
}

// RequireVault rejects callers that are not the vault.
func (a *Authority) RequireVault(caller enctr.Address) error {
	return a.require(caller, Vault)
}

// RequireGovernorOrGuardian rejects callers holding neither role.
func (a *Authority) RequireGovernorOrGuardian(caller enctr.Address) error {
	return a.require(caller, Governor, Guardian)
}

func (a *Authority) require(caller enctr.Address, roles ...Role) error {
	for _, role := range roles {
		ok, err := a.Has(role, caller)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return reverts.New(reverts.ErrUnauthorized, "UNAUTHORIZED")
}
