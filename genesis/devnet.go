// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/encountr/enctr/builtin"
	"github.com/encountr/enctr/builtin/treasury"
	"github.com/encountr/enctr/enctr"
)

// DevAccount account for development.
type DevAccount struct {
	Address    enctr.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for the dev network.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{enctr.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// Dev token addresses.
var (
	DevDAIAddr = enctr.BytesToAddress([]byte("DAI"))
	DevLPAddr  = enctr.BytesToAddress([]byte("ENCTR-DAI"))
)

// DevConfig returns the config of the dev network. The first dev account
// holds every role but the vault and has seeded the treasury with 100,000 DAI
// against 50,000 ENCTR.
func DevConfig() *Config {
	accs := DevAccounts()
	admin := accs[0].Address

	accounts := make([]Account, 0, len(accs))
	for _, a := range accs {
		accounts = append(accounts, Account{
			Address: a.Address,
			Balances: map[string]*Amount{
				"DAI":       amount(enctr.Units(1_000_000, 18)),
				"ENCTR-DAI": amount(enctr.Units(1_000, 18)),
			},
		})
	}

	return &Config{
		LaunchTime: 1526400000, // 'Wed May 16 2018 00:00:00 GMT+0800 (CST)'
		Authority: Authority{
			Governor: admin,
			Guardian: admin,
			Policy:   admin,
		},
		Epoch:  Epoch{Length: 28800, Number: 1},
		Index:  amount(enctr.Units(1, enctr.BaseDecimals)),
		Bounty: amount(enctr.Units(1, enctr.BaseDecimals-1)),
		Reserves: []Reserve{
			{Address: DevDAIAddr, Name: "Dai Stablecoin", Symbol: "DAI", Decimals: enctr.StableDecimals},
			{Address: DevLPAddr, Name: "ENCTR-DAI LP", Symbol: "ENCTR-DAI", Decimals: 18, Price: amount(enctr.Units(20, enctr.BaseDecimals))},
		},
		Permissions: []Permission{
			{Kind: treasury.ReserveDepositor, Address: admin},
			{Kind: treasury.LiquidityDepositor, Address: admin},
			{Kind: treasury.ReserveManager, Address: admin},
			{Kind: treasury.Debtor, Address: admin},
		},
		DebtLimits: []DebtLimit{
			{Address: admin, Limit: amount(enctr.Units(10_000, enctr.BaseDecimals))},
		},
		Recipients: []Recipient{
			{Address: builtin.StakingAddr, Rate: 4000},
		},
		Accounts: accounts,
		Deposits: []Deposit{
			{From: admin, Token: "DAI", Amount: amount(enctr.Units(100_000, 18)), Profit: amount(enctr.Units(50_000, enctr.BaseDecimals))},
		},
	}
}

// NewDevnet create genesis for the dev network.
func NewDevnet() *Genesis {
	gen, err := New("devnet", DevConfig())
	if err != nil {
		panic(err)
	}
	return gen
}
