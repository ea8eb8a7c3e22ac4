package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/scrypt"
)

const (
	keystoreVersion = 1

	scryptN     = 1 << 15
	scryptR     = 8
	scryptP     = 1
	scryptDKLen = 32
)

var ErrInvalidPassword = errors.New("wallet: invalid password")

type KeystoreFile struct {
	PublicKey string `json:"public_key"`
	Crypto    Crypto `json:"crypto"`
	Version   int    `json:"version"`
}

type Crypto struct {
	Cipher       string       `json:"cipher"`
	CipherText   string       `json:"ciphertext"`
	CipherParams CipherParams `json:"cipherparams"`
	KDF          string       `json:"kdf"`
	KDFParams    KDFParams    `json:"kdfparams"`
	MAC          string       `json:"mac"`
}

type CipherParams struct {
	IV string `json:"iv"`
}

type KDFParams struct {
	DKLen int    `json:"dklen"`
	N     int    `json:"n"`
	P     int    `json:"p"`
	R     int    `json:"r"`
	Salt  string `json:"salt"`
}

// EncryptKeypair seals k under password using scrypt and aes-128-ctr.
func EncryptKeypair(k *Keypair, password string) (*KeystoreFile, error) {
	return encryptKeypair(k, password, scryptN)
}

func encryptKeypair(k *Keypair, password string, n int) (*KeystoreFile, error) {
	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, n, scryptR, scryptP, scryptDKLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	block, err := aes.NewCipher(derivedKey[:16])
	if err != nil {
		return nil, err
	}

	plaintext := k.Bytes()
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCTR(block, iv).XORKeyStream(ciphertext, plaintext)

	return &KeystoreFile{
		PublicKey: k.PublicKey().String(),
		Version:   keystoreVersion,
		Crypto: Crypto{
			Cipher:       "aes-128-ctr",
			CipherText:   hex.EncodeToString(ciphertext),
			CipherParams: CipherParams{IV: hex.EncodeToString(iv)},
			KDF:          "scrypt",
			KDFParams: KDFParams{
				DKLen: scryptDKLen,
				N:     n,
				P:     scryptP,
				R:     scryptR,
				Salt:  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(keystoreMAC(derivedKey, ciphertext)),
		},
	}, nil
}

// Decrypt recovers the keypair sealed in ks.
func (ks *KeystoreFile) Decrypt(password string) (*Keypair, error) {
	if ks.Crypto.KDF != "scrypt" || ks.Crypto.Cipher != "aes-128-ctr" {
		return nil, fmt.Errorf("unsupported keystore %s/%s", ks.Crypto.KDF, ks.Crypto.Cipher)
	}

	salt, err := hex.DecodeString(ks.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}
	ciphertext, err := hex.DecodeString(ks.Crypto.CipherText)
	if err != nil {
		return nil, fmt.Errorf("invalid ciphertext: %w", err)
	}
	storedMAC, err := hex.DecodeString(ks.Crypto.MAC)
	if err != nil {
		return nil, fmt.Errorf("invalid mac: %w", err)
	}
	iv, err := hex.DecodeString(ks.Crypto.CipherParams.IV)
	if err != nil {
		return nil, fmt.Errorf("invalid iv: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("invalid iv length %d", len(iv))
	}

	p := ks.Crypto.KDFParams
	derivedKey, err := scrypt.Key([]byte(password), salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	if len(derivedKey) < 32 {
		return nil, fmt.Errorf("derived key too short: %d", len(derivedKey))
	}

	if subtle.ConstantTimeCompare(keystoreMAC(derivedKey, ciphertext), storedMAC) != 1 {
		return nil, ErrInvalidPassword
	}

	block, err := aes.NewCipher(derivedKey[:16])
	if err != nil {
		return nil, err
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, ciphertext)

	return KeypairFromBytes(plaintext)
}

func keystoreMAC(derivedKey, ciphertext []byte) []byte {
	h := sha256.New()
	h.Write(derivedKey[16:32])
	h.Write(ciphertext)
	return h.Sum(nil)
}

func SaveKeypairToFile(k *Keypair, password, path string) error {
	ks, err := EncryptKeypair(k, password)
	if err != nil {
		return err
	}
	return ks.Save(path)
}

func (ks *KeystoreFile) Save(path string) error {
	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keystore: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func LoadKeypairFromFile(password, path string) (*Keypair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore: %w", err)
	}

	var ks KeystoreFile
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, fmt.Errorf("failed to parse keystore: %w", err)
	}

	return ks.Decrypt(password)
}

func KeystoreExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
