// Package snapshot copies the source catalog to a backup target after
// commands that change it.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"mcat-go/internal/mcat"
)

// Target stores snapshot files under a name.
type Target interface {
	Put(ctx context.Context, name string, r io.Reader) error
}

// Source writes a consistent copy of a database to a new file.
type Source interface {
	BackupTo(destPath string) error
}

// Snapshotter takes catalog snapshots and hands them to a Target, encrypting
// them for an age recipient when one is set.
type Snapshotter struct {
	target    Target
	recipient age.Recipient
	clock     mcat.Clock
}

// NewSnapshotter creates a Snapshotter. A nil recipient stores snapshots as
// plain SQLite files.
func NewSnapshotter(target Target, recipient age.Recipient, clock mcat.Clock) *Snapshotter {
	if clock == nil {
		clock = mcat.RealClock{}
	}
	return &Snapshotter{target: target, recipient: recipient, clock: clock}
}

// ParseRecipient parses an age public key ("age1...").
func ParseRecipient(s string) (age.Recipient, error) {
	recipients, err := age.ParseRecipients(strings.NewReader(s))
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot recipient: %w", err)
	}
	if len(recipients) != 1 {
		return nil, fmt.Errorf("expected one snapshot recipient, got %d", len(recipients))
	}
	return recipients[0], nil
}

// Name returns the snapshot name for an operation:
// sources-<UTC time>-<operation id>.db, with .age appended when encrypted.
func (s *Snapshotter) Name(opID int64) string {
	name := fmt.Sprintf("sources-%s-%06d.db", s.clock.Now().UTC().Format("20060102T150405Z"), opID)
	if s.recipient != nil {
		name += ".age"
	}
	return name
}

// Take copies src and stores the copy on the target. It returns the name the
// snapshot was stored under.
func (s *Snapshotter) Take(ctx context.Context, src Source, opID int64) (string, error) {
	tmpDir, err := os.MkdirTemp("", "mcat-snapshot-*")
	if err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "sources.db")
	if err := src.BackupTo(dbPath); err != nil {
		return "", err
	}

	uploadPath := dbPath
	if s.recipient != nil {
		uploadPath = dbPath + ".age"
		if err := encryptFile(dbPath, uploadPath, s.recipient); err != nil {
			return "", err
		}
	}

	f, err := os.Open(uploadPath)
	if err != nil {
		return "", fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	name := s.Name(opID)
	if err := s.target.Put(ctx, name, f); err != nil {
		return "", fmt.Errorf("storing snapshot %s: %w", name, err)
	}
	return name, nil
}

func encryptFile(srcPath, destPath string, recipient age.Recipient) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	defer out.Close()

	w, err := age.Encrypt(out, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return out.Close()
}
