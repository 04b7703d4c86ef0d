package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/kiosk/internal/paths"
	"github.com/mesh-intelligence/kiosk/pkg/kiosk"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// ErrNoOwnerCap is returned when the wallet holds no cap for a kiosk.
var ErrNoOwnerCap = errors.New("no owner cap in wallet for kiosk")

// wallet maps kiosk IDs to the IDs of their owner caps. A cap ID lets the
// CLI recover the OwnerCap, so the file is written owner-readable only.
type wallet struct {
	path   string
	Kiosks map[string]string `yaml:"kiosks"`
}

// loadWallet reads the wallet in configDir. A missing file yields an empty
// wallet.
func loadWallet(configDir string) (*wallet, error) {
	w := &wallet{path: paths.WalletFile(configDir), Kiosks: map[string]string{}}
	data, err := os.ReadFile(w.path)
	if errors.Is(err, os.ErrNotExist) {
		return w, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	if err := yaml.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("parse wallet %s: %w", w.path, err)
	}
	if w.Kiosks == nil {
		w.Kiosks = map[string]string{}
	}
	return w, nil
}

func (w *wallet) put(cap *kiosk.OwnerCap) {
	w.Kiosks[cap.For().String()] = cap.ID().String()
}

func (w *wallet) remove(id types.ID) {
	delete(w.Kiosks, id.String())
}

// capID returns the owner cap ID recorded for kiosk id.
func (w *wallet) capID(id types.ID) (types.ID, error) {
	s, ok := w.Kiosks[id.String()]
	if !ok {
		return types.NilID, fmt.Errorf("%w %s", ErrNoOwnerCap, id)
	}
	return types.ParseID(s)
}

// save writes the wallet through a temp file renamed into place.
func (w *wallet) save() error {
	data, err := yaml.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o700); err != nil {
		return err
	}
	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace wallet: %w", err)
	}
	return nil
}
