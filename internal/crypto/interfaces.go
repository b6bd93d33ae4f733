package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/payload_cipher_mock.go -package=mock

// PayloadCipher seals the synchronized payload with a user password.
//
// Scheme:
//
//	salt  = random 16 bytes (one per blob)
//	key   = Argon2id(password, salt)
//	blob  = base64(salt ‖ nonce ‖ AES-256-GCM(key, nonce, plaintext))
//
// The salt travels with the blob, so any device that knows the password can
// open it and nothing but the password has to be shared.
type PayloadCipher interface {
	// Encrypt seals plaintext with a key derived from password and returns
	// the base64 blob.
	Encrypt(plaintext []byte, password string) (string, error)

	// Decrypt opens a blob produced by Encrypt. It returns
	// ErrDecryptionFailed when the password is wrong or the blob is damaged.
	Decrypt(blob, password string) ([]byte, error)
}
