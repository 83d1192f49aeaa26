// Package storage persists camera calibration profiles.
// Profiles can be encrypted at rest using NaCl secretbox with a
// machine-derived key.
package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/jmakovec/camsight/pkg/logging"
	"github.com/jmakovec/camsight/pkg/proximity"
)

const (
	// NonceSize is the size of the nonce used for encryption
	NonceSize = 24
	// KeySize is the size of the encryption key
	KeySize = 32
)

// Profile is a named camera calibration.
type Profile struct {
	Name        string                `json:"name"`
	Calibration proximity.Calibration `json:"calibration"`
	CreatedAt   time.Time             `json:"created_at"`
	LastUsed    time.Time             `json:"last_used"`
	Metadata    map[string]string     `json:"metadata"`
}

// ErrProfileNotFound is returned when the profile does not exist.
var ErrProfileNotFound = errors.New("calibration profile not found")

// ErrProfileExists is returned when trying to create an existing profile.
var ErrProfileExists = errors.New("calibration profile already exists")

// ErrEncryption is returned when encryption/decryption fails.
var ErrEncryption = errors.New("encryption error")

// FileStorage stores calibration profiles as files under a data directory.
type FileStorage struct {
	dataDir           string
	encryptionEnabled bool
	encryptionKey     [KeySize]byte
}

// NewFileStorage creates a new FileStorage instance.
func NewFileStorage(dataDir string, encryptionEnabled bool) (*FileStorage, error) {
	fs := &FileStorage{
		dataDir:           dataDir,
		encryptionEnabled: encryptionEnabled,
	}

	// Derive encryption key from machine-specific information
	if encryptionEnabled {
		key, err := deriveKey()
		if err != nil {
			return nil, fmt.Errorf("failed to derive encryption key: %w", err)
		}
		fs.encryptionKey = key
	}

	// Ensure directories exist
	profilesDir := filepath.Join(dataDir, "profiles")
	if err := os.MkdirAll(profilesDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create profiles directory: %w", err)
	}

	return fs, nil
}

// deriveKey derives an encryption key from machine-specific information.
// This ties the encrypted data to this specific machine.
func deriveKey() ([KeySize]byte, error) {
	var key [KeySize]byte

	// Combine multiple sources of machine identity
	var identity strings.Builder

	// Machine ID (Linux specific)
	if machineID, err := os.ReadFile("/etc/machine-id"); err == nil {
		identity.Write(machineID)
	}

	// Hostname
	if hostname, err := os.Hostname(); err == nil {
		identity.WriteString(hostname)
	}

	// User ID
	identity.WriteString(fmt.Sprintf("%d", os.Getuid()))

	// Add a constant salt for additional security
	identity.WriteString("camsight-v1-salt")

	// Hash to derive key
	hash := sha256.Sum256([]byte(identity.String()))
	copy(key[:], hash[:])

	return key, nil
}

// getProfilePath returns the file path for a profile.
func (fs *FileStorage) getProfilePath(name string) string {
	filename := name + ".json"
	if fs.encryptionEnabled {
		filename = name + ".enc"
	}
	return filepath.Join(fs.dataDir, "profiles", filename)
}

// SaveProfile saves a calibration profile to storage.
func (fs *FileStorage) SaveProfile(profile Profile) error {
	path := fs.getProfilePath(profile.Name)

	// Marshal to JSON
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	// Encrypt if enabled
	if fs.encryptionEnabled {
		data, err = fs.encrypt(data)
		if err != nil {
			return fmt.Errorf("failed to encrypt profile: %w", err)
		}
	}

	// Write to file
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	logging.Debugf("Saved calibration profile: %s", profile.Name)
	return nil
}

// LoadProfile loads a calibration profile from storage.
func (fs *FileStorage) LoadProfile(name string) (*Profile, error) {
	path := fs.getProfilePath(name)

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	// Decrypt if enabled
	if fs.encryptionEnabled {
		data, err = fs.decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt profile: %w", err)
		}
	}

	// Unmarshal JSON
	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	logging.Debugf("Loaded calibration profile: %s", name)
	return &profile, nil
}

// DeleteProfile removes a calibration profile from storage.
func (fs *FileStorage) DeleteProfile(name string) error {
	path := fs.getProfilePath(name)

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	logging.Infof("Deleted calibration profile: %s", name)
	return nil
}

// ListProfiles returns the names of all stored profiles.
func (fs *FileStorage) ListProfiles() ([]string, error) {
	profilesDir := filepath.Join(fs.dataDir, "profiles")

	entries, err := os.ReadDir(profilesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	var profiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Handle both encrypted and unencrypted files
		if strings.HasSuffix(name, ".json") {
			profiles = append(profiles, strings.TrimSuffix(name, ".json"))
		} else if strings.HasSuffix(name, ".enc") {
			profiles = append(profiles, strings.TrimSuffix(name, ".enc"))
		}
	}

	return profiles, nil
}

// ProfileExists checks if a profile is stored.
func (fs *FileStorage) ProfileExists(name string) bool {
	path := fs.getProfilePath(name)
	_, err := os.Stat(path)
	return err == nil
}

// CreateProfile creates a new profile from a calibration.
func (fs *FileStorage) CreateProfile(name string, cal proximity.Calibration, metadata map[string]string) error {
	if fs.ProfileExists(name) {
		return ErrProfileExists
	}

	if metadata == nil {
		metadata = make(map[string]string)
	}

	profile := Profile{
		Name:        name,
		Calibration: cal,
		CreatedAt:   time.Now(),
		LastUsed:    time.Now(),
		Metadata:    metadata,
	}

	return fs.SaveProfile(profile)
}

// UpdateLastUsed updates the last used timestamp for a profile.
func (fs *FileStorage) UpdateLastUsed(name string) error {
	profile, err := fs.LoadProfile(name)
	if err != nil {
		return err
	}

	profile.LastUsed = time.Now()
	return fs.SaveProfile(*profile)
}

// encrypt encrypts data using NaCl secretbox.
func (fs *FileStorage) encrypt(plaintext []byte) ([]byte, error) {
	// Generate random nonce
	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}

	// Encrypt
	encrypted := secretbox.Seal(nonce[:], plaintext, &nonce, &fs.encryptionKey)
	return encrypted, nil
}

// decrypt decrypts data using NaCl secretbox.
func (fs *FileStorage) decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < NonceSize {
		return nil, ErrEncryption
	}

	// Extract nonce
	var nonce [NonceSize]byte
	copy(nonce[:], ciphertext[:NonceSize])

	// Decrypt
	plaintext, ok := secretbox.Open(nil, ciphertext[NonceSize:], &nonce, &fs.encryptionKey)
	if !ok {
		return nil, ErrEncryption
	}

	return plaintext, nil
}
