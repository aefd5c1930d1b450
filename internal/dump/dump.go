package dump

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mozilla-services/go-readthrough-cache/config"
	"github.com/mozilla-services/go-readthrough-cache/internal/shared/bytes"
)

var ErrNotEnabled = errors.New("persistence mode is not enabled")

const snapshotFile = "entries.gob.gz"

type Dumper interface {
	Dump(ctx context.Context) error
	Load(ctx context.Context) error
}

// Snapshotter is the cache side of persistence: Export copies both maps,
// Import merges them back while skipping entries already past their TTL.
type Snapshotter[K comparable, V any] interface {
	Export() (entries map[K]V, accessed map[K]time.Time)
	Import(entries map[K]V, accessed map[K]time.Time) (restored int64)
}

type snapshot[K comparable, V any] struct {
	TakenAt  time.Time
	Entries  map[K]V
	Accessed map[K]time.Time
}

type Dump[K comparable, V any] struct {
	cfg   *config.PersistenceCfg
	store Snapshotter[K, V]
}

func New[K comparable, V any](cfg *config.PersistenceCfg, store Snapshotter[K, V]) Dumper {
	if !cfg.Enabled() {
		return &NoOpDumper{}
	}
	return &Dump[K, V]{cfg: cfg, store: store}
}

// Dump writes retained entries and their access times into a fresh versioned
// directory under cfg.Dir, then trims old versions past KeepVersions.
func (d *Dump[K, V]) Dump(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("create base dump dir: %w", err)
	}

	versionDir := filepath.Join(d.cfg.Dir, fmt.Sprintf("v%d", nextVersion(d.cfg.Dir)))
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		return fmt.Errorf("create version dir: %w", err)
	}
	path := filepath.Join(versionDir, snapshotFile)

	entries, accessed := d.store.Export()
	snap := snapshot[K, V]{TakenAt: time.Now(), Entries: entries, Accessed: accessed}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	gz := gzip.NewWriter(bw)
	if err = gob.NewEncoder(gz).Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot %s: %w", path, err)
	}
	if err = gz.Close(); err != nil {
		return fmt.Errorf("close gzip stream %s: %w", path, err)
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("flush snapshot %s: %w", path, err)
	}

	var size uint64
	if st, statErr := f.Stat(); statErr == nil {
		size = uint64(st.Size())
	}
	log.Info().
		Str("dir", versionDir).
		Int("entries", len(entries)).
		Int("tracked_keys", len(accessed)).
		Str("size", bytes.FmtMem(size)).
		Msg("cache snapshot written")

	d.trimOldVersions()
	return nil
}

// Load restores the latest snapshot. Entries idle longer than TTL at load
// time are dropped by the importer.
func (d *Dump[K, V]) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	version, ok := latestVersion(d.cfg.Dir)
	if !ok {
		return fmt.Errorf("no snapshot found in %s", d.cfg.Dir)
	}
	return d.loadVersion(version)
}

func (d *Dump[K, V]) loadVersion(version int) error {
	path := filepath.Join(d.cfg.Dir, fmt.Sprintf("v%d", version), snapshotFile)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open snapshot file %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("open gzip stream %s: %w", path, err)
	}
	defer gz.Close()

	var snap snapshot[K, V]
	if err = gob.NewDecoder(gz).Decode(&snap); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	restored := d.store.Import(snap.Entries, snap.Accessed)
	log.Info().
		Str("path", path).
		Time("taken_at", snap.TakenAt).
		Int64("restored", restored).
		Int("skipped", len(snap.Accessed)-int(restored)).
		Msg("cache snapshot loaded")

	return nil
}

func (d *Dump[K, V]) trimOldVersions() {
	if d.cfg.KeepVersions <= 0 {
		return
	}
	versions := listVersions(d.cfg.Dir)
	if len(versions) <= d.cfg.KeepVersions {
		return
	}
	for _, v := range versions[:len(versions)-d.cfg.KeepVersions] {
		dir := filepath.Join(d.cfg.Dir, fmt.Sprintf("v%d", v))
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("failed to remove old snapshot version")
		}
	}
}

// listVersions returns existing snapshot versions in ascending order.
func listVersions(dir string) []int {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var versions []int
	for _, de := range des {
		if !de.IsDir() || !strings.HasPrefix(de.Name(), "v") {
			continue
		}
		if v, convErr := strconv.Atoi(strings.TrimPrefix(de.Name(), "v")); convErr == nil {
			versions = append(versions, v)
		}
	}
	sort.Ints(versions)
	return versions
}

func latestVersion(dir string) (int, bool) {
	versions := listVersions(dir)
	if len(versions) == 0 {
		return 0, false
	}
	return versions[len(versions)-1], true
}

func nextVersion(dir string) int {
	latest, ok := latestVersion(dir)
	if !ok {
		return 1
	}
	return latest + 1
}

// NoOpDumper is used when persistence is disabled.
type NoOpDumper struct{}

func (NoOpDumper) Dump(ctx context.Context) error { return ErrNotEnabled }
func (NoOpDumper) Load(ctx context.Context) error { return ErrNotEnabled }
