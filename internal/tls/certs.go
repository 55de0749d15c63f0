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

// Package tls generates the self-signed development certificate used by
// the admin HTTP surface when RAFTEDGE_ADMIN_TLS=1 (SPEC_FULL.md §4.F).
// There is no certificate rotation here: the admin surface is a single
// short-lived dev listener, not a long-running multi-client service.
package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"
)

// CertConfig holds configuration for self-signed certificate generation.
type CertConfig struct {
	Organization string
	CommonName   string
	ValidityDays int
	SANs         []string
}

// DefaultCertConfig returns a cert config scoped to the local host, valid
// for one year.
func DefaultCertConfig() CertConfig {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "localhost"
	}
	return CertConfig{
		Organization: "raftedge",
		CommonName:   hostname,
		ValidityDays: 365,
		SANs:         []string{hostname, "localhost", "127.0.0.1", "::1"},
	}
}

// GenerateSelfSignedCert generates an ECDSA P-256 self-signed certificate
// and private key, both PEM-encoded.
func GenerateSelfSignedCert(cfg CertConfig) (certPEM, keyPEM []byte, err error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate private key: %w", err)
	}

	serialLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serial, err := rand.Int(rand.Reader, serialLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("generate serial number: %w", err)
	}

	notBefore := time.Now()
	notAfter := notBefore.Add(time.Duration(cfg.ValidityDays) * 24 * time.Hour)

	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{cfg.Organization},
			CommonName:   cfg.CommonName,
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              cfg.SANs,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, fmt.Errorf("create certificate: %w", err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	keyDER, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal private key: %w", err)
	}
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	return certPEM, keyPEM, nil
}

// SaveCertificates writes certPEM/keyPEM to disk, creating the containing
// directory if needed. The key file is owner-only.
func SaveCertificates(certPath, keyPath string, certPEM, keyPEM []byte) error {
	if err := os.MkdirAll(filepath.Dir(certPath), 0755); err != nil {
		return fmt.Errorf("create certificate directory: %w", err)
	}
	if err := os.WriteFile(certPath, certPEM, 0644); err != nil {
		return fmt.Errorf("write certificate file: %w", err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// DefaultCertPaths returns where EnsureCertificates looks for (and writes)
// the admin listener's dev certificate, under the user's config directory
// when not running as root.
func DefaultCertPaths() (certPath, keyPath string) {
	var dir string
	if os.Getuid() == 0 {
		dir = "/etc/raftedge/certs"
	} else if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".config", "raftedge", "certs")
	} else {
		dir = "./certs"
	}
	return filepath.Join(dir, "admin.crt"), filepath.Join(dir, "admin.key")
}

// EnsureCertificates returns a loadable *tls.Config for the admin
// listener, generating and saving a fresh self-signed cert under certPath/
// keyPath on first boot, or whenever either file is missing.
func EnsureCertificates(certPath, keyPath string, cfg CertConfig) (*tls.Config, error) {
	if !fileExists(certPath) || !fileExists(keyPath) {
		certPEM, keyPEM, err := GenerateSelfSignedCert(cfg)
		if err != nil {
			return nil, fmt.Errorf("generate dev certificate: %w", err)
		}
		if err := SaveCertificates(certPath, keyPath, certPEM, keyPEM); err != nil {
			return nil, fmt.Errorf("save dev certificate: %w", err)
		}
	}

	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("load dev certificate: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
