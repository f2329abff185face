// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/test/datagen"
)

func M(a ...any) []any {
	return a
}

func TestAuthority(t *testing.T) {
	st := datagen.NewState(t)
	aut := New(enctr.BytesToAddress([]byte("auth")), st)

	governor := datagen.RandAddress()
	guardian := datagen.RandAddress()
	policy := datagen.RandAddress()
	vault := datagen.RandAddress()

	require.NoError(t, aut.Initialize(governor, guardian, policy, vault))
	err := aut.Initialize(governor, guardian, policy, vault)
	assert.True(t, errors.Is(err, reverts.ErrAlreadyInitialized))

	tests := []struct {
		ret      []any
		expected []any
	}{
		{M(aut.IsGovernor(governor)), M(true, nil)},
		{M(aut.IsGuardian(guardian)), M(true, nil)},
		{M(aut.IsPolicy(policy)), M(true, nil)},
		{M(aut.IsVault(vault)), M(true, nil)},
		{M(aut.IsVault(governor)), M(false, nil)},
		{M(aut.IsGovernor(enctr.Address{})), M(false, nil)},
		{M(aut.Get(Guardian)), M(guardian, nil)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.ret)
	}
}

func TestPushPull(t *testing.T) {
	st := datagen.NewState(t)
	aut := New(enctr.BytesToAddress([]byte("auth")), st)
	governor := datagen.RandAddress()
	require.NoError(t, aut.Initialize(governor, governor, governor, governor))

	treasury := datagen.RandAddress()
	stranger := datagen.RandAddress()

	err := aut.Push(stranger, Vault, treasury, true)
	assert.EqualError(t, err, "UNAUTHORIZED")
	assert.True(t, errors.Is(err, reverts.ErrUnauthorized))

	require.NoError(t, aut.Push(governor, Vault, treasury, true))
	assert.Equal(t, M(true, nil), M(aut.IsVault(treasury)))

	// delayed push needs a pull by the new holder
	newGov := datagen.RandAddress()
	require.NoError(t, aut.Push(governor, Governor, newGov, false))
	assert.Equal(t, M(true, nil), M(aut.IsGovernor(governor)))

	assert.EqualError(t, aut.Pull(stranger, Governor), "!newGovernor")
	require.NoError(t, aut.Pull(newGov, Governor))
	assert.Equal(t, M(true, nil), M(aut.IsGovernor(newGov)))
	assert.Equal(t, M(enctr.Address{}, nil), M(aut.Pending(Governor)))

	assert.True(t, errors.Is(aut.Push(newGov, Policy, enctr.Address{}, true), reverts.ErrInvalidAddress))

	names := make([]string, 0)
	for _, ev := range st.Events() {
		names = append(names, ev.Name)
	}
	assert.Contains(t, names, "VaultPushed")
	assert.Contains(t, names, "GovernorPulled")
}

func TestParseRole(t *testing.T) {
	for _, name := range []string{"Governor", "guardian", "POLICY", "vault"} {
		role, err := ParseRole(name)
		assert.NoError(t, err)
		assert.True(t, strings.EqualFold(name, role.String()))
	}
	_, err := ParseRole("king")
	assert.EqualError(t, err, `unknown role "king"`)
}
