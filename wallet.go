package apollocore

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/bursa"
	"github.com/blinklabs-io/bursa/bip32"

	"github.com/cardano-forge/apollocore/common"
)

// Wallet provides signing and address capabilities for transaction building.
type Wallet interface {
	// Address returns the payment address for this wallet.
	Address() common.Address
	// SignTxBody signs a transaction body hash and returns a VkeyWitness.
	SignTxBody(txBodyHash common.Blake2b256) (common.VkeyWitness, error)
	// PubKeyHash returns the payment public key hash.
	PubKeyHash() common.Blake2b224
	// StakePubKeyHash returns the staking public key hash (zero if not staking).
	StakePubKeyHash() common.Blake2b224
}

// BursaWallet wraps bursa key derivation for HD wallet functionality.
type BursaWallet struct {
	mnemonic   string
	address    common.Address
	paymentKey bip32.XPrv
	stakeKey   bip32.XPrv
}

// NewBursaWallet creates a new wallet from a mnemonic string.
func NewBursaWallet(mnemonic string, opts ...bursa.WalletOption) (*BursaWallet, error) {
	return NewBursaWalletWithPassphrase(mnemonic, "", opts...)
}

// NewBursaWalletWithPassphrase creates a new wallet from a mnemonic and
// passphrase used for BIP39 key derivation.
func NewBursaWalletWithPassphrase(mnemonic string, passphrase string, opts ...bursa.WalletOption) (*BursaWallet, error) {
	allOpts := append(append([]bursa.WalletOption{}, opts...), bursa.WithPassword(passphrase))
	w, err := bursa.NewWallet(mnemonic, allOpts...)
	if err != nil {
		return nil, fmt.Errorf("apollocore: creating bursa wallet: %w", err)
	}

	addr, err := common.NewAddress(w.PaymentAddress)
	if err != nil {
		return nil, fmt.Errorf("apollocore: parsing bursa wallet address: %w", err)
	}

	rootKey, err := bursa.GetRootKeyFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("apollocore: deriving root key: %w", err)
	}
	accountKey, err := bursa.GetAccountKey(rootKey, 0)
	if err != nil {
		return nil, fmt.Errorf("apollocore: deriving account key: %w", err)
	}
	paymentKey, err := bursa.GetPaymentKey(accountKey, 0)
	if err != nil {
		return nil, fmt.Errorf("apollocore: deriving payment key: %w", err)
	}
	stakeKey, err := bursa.GetStakeKey(accountKey, 0)
	if err != nil {
		return nil, fmt.Errorf("apollocore: deriving stake key: %w", err)
	}

	return &BursaWallet{
		mnemonic:   w.Mnemonic,
		address:    addr,
		paymentKey: paymentKey,
		stakeKey:   stakeKey,
	}, nil
}

// NewBursaWalletGenerate creates a new wallet with a freshly generated
// mnemonic.
func NewBursaWalletGenerate(opts ...bursa.WalletOption) (*BursaWallet, error) {
	mnemonic, err := bursa.GenerateMnemonic()
	if err != nil {
		return nil, fmt.Errorf("apollocore: generating mnemonic: %w", err)
	}
	return NewBursaWallet(mnemonic, opts...)
}

func (w *BursaWallet) Address() common.Address { return w.address }

func (w *BursaWallet) SignTxBody(txBodyHash common.Blake2b256) (common.VkeyWitness, error) {
	return common.VkeyWitness{
		Vkey:      w.paymentKey.Public().PublicKey(),
		Signature: w.paymentKey.Sign(txBodyHash.Bytes()),
	}, nil
}

func (w *BursaWallet) PubKeyHash() common.Blake2b224 {
	return common.Blake2b224Hash(w.paymentKey.Public().PublicKey())
}

func (w *BursaWallet) StakePubKeyHash() common.Blake2b224 {
	return common.Blake2b224Hash(w.stakeKey.Public().PublicKey())
}

// Mnemonic returns the mnemonic for this wallet.
func (w *BursaWallet) Mnemonic() string { return w.mnemonic }

// String returns a representation that does not expose key material.
func (w *BursaWallet) String() string {
	return fmt.Sprintf("BursaWallet{address: %s}", w.address.String())
}

// GoString prevents key material from leaking via %#v.
func (w *BursaWallet) GoString() string { return w.String() }

// KeyPairWallet signs from a raw BIP32 extended private key.
type KeyPairWallet struct {
	address    common.Address
	privateKey bip32.XPrv
}

// NewKeyPairWallet creates a wallet from an extended private key and address.
func NewKeyPairWallet(addr common.Address, key bip32.XPrv) *KeyPairWallet {
	return &KeyPairWallet{address: addr, privateKey: key}
}

func (w *KeyPairWallet) Address() common.Address { return w.address }

func (w *KeyPairWallet) SignTxBody(txBodyHash common.Blake2b256) (common.VkeyWitness, error) {
	return common.VkeyWitness{
		Vkey:      w.privateKey.Public().PublicKey(),
		Signature: w.privateKey.Sign(txBodyHash.Bytes()),
	}, nil
}

func (w *KeyPairWallet) PubKeyHash() common.Blake2b224 {
	return common.Blake2b224Hash(w.privateKey.Public().PublicKey())
}

// StakePubKeyHash returns a zero hash: KeyPairWallet carries no staking key.
func (w *KeyPairWallet) StakePubKeyHash() common.Blake2b224 { return common.Blake2b224{} }

// ExternalWallet is an address-only watch-only wallet; it cannot sign.
type ExternalWallet struct {
	address common.Address
}

// NewExternalWallet creates a watch-only wallet from an address.
func NewExternalWallet(addr common.Address) *ExternalWallet {
	return &ExternalWallet{address: addr}
}

func (w *ExternalWallet) Address() common.Address { return w.address }

func (w *ExternalWallet) SignTxBody(common.Blake2b256) (common.VkeyWitness, error) {
	return common.VkeyWitness{}, errors.New("apollocore: external wallet cannot sign transactions")
}

func (w *ExternalWallet) PubKeyHash() common.Blake2b224 {
	if cred := w.address.PaymentCredential(); cred != nil {
		return cred.Credential
	}
	return common.Blake2b224{}
}

func (w *ExternalWallet) StakePubKeyHash() common.Blake2b224 {
	if cred := w.address.StakeCredential(); cred != nil {
		return cred.Credential
	}
	return common.Blake2b224{}
}

var (
	_ Wallet = (*BursaWallet)(nil)
	_ Wallet = (*KeyPairWallet)(nil)
	_ Wallet = (*ExternalWallet)(nil)
)
