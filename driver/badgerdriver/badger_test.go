package badgerdriver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rowgate/rowgate/driver"
	"github.com/rowgate/rowgate/rowenc"
)

func newTestDriver(t *testing.T) *Badger {
	t.Helper()

	b, err := New(&Config{Location: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestConfigValidation(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	_, err := New(&Config{})
	req.Error(err)
}

func TestCRUD(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	b := newTestDriver(t)

	key, err := b.Insert("users", "id", map[string]any{"name": "alice"})
	req.NoError(err)
	req.Equal(int64(1), key)

	key, err = b.Insert("users", "id", map[string]any{"name": "bob"})
	req.NoError(err)
	req.Equal(int64(2), key)

	_, err = b.Insert("users", "id", map[string]any{"id": int64(1), "name": "dup"})
	req.ErrorIs(err, driver.ErrDuplicateKey)

	res, err := b.Select("users", "id IN (1, 2)", driver.SelectOpts{})
	req.NoError(err)
	req.Len(res.Rows, 2)

	affected, err := b.Update("users", "id", "name = 'bob'", map[string]any{"name": "robert"})
	req.NoError(err)
	req.Equal(int64(1), affected)

	res, err = b.Select("users", "name = 'robert'", driver.SelectOpts{})
	req.NoError(err)
	req.Len(res.Rows, 1)

	affected, err = b.Delete("users", "id = 1")
	req.NoError(err)
	req.Equal(int64(1), affected)

	res, err = b.Select("users", "", driver.SelectOpts{})
	req.NoError(err)
	req.Len(res.Rows, 1)
	req.Equal("robert", res.Rows[0]["name"])
}

func TestTablesAreIsolated(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	b := newTestDriver(t)

	_, err := b.Insert("users", "id", map[string]any{"name": "alice"})
	req.NoError(err)
	_, err = b.Insert("groups", "id", map[string]any{"name": "admins"})
	req.NoError(err)

	res, err := b.Select("users", "", driver.SelectOpts{})
	req.NoError(err)
	req.Len(res.Rows, 1)
	req.Equal("alice", res.Rows[0]["name"])

	affected, err := b.Truncate("groups", false)
	req.NoError(err)
	req.Equal(int64(1), affected)

	res, err = b.Select("users", "", driver.SelectOpts{})
	req.NoError(err)
	req.Len(res.Rows, 1)
}

func TestUpdateRekeysOnKeyPatch(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	b := newTestDriver(t)

	_, err := b.Insert("users", "id", map[string]any{"id": int64(1), "name": "alice"})
	req.NoError(err)

	affected, err := b.Update("users", "id", "id = 1", map[string]any{"id": int64(9)})
	req.NoError(err)
	req.Equal(int64(1), affected)

	res, err := b.Select("users", "id = 1", driver.SelectOpts{})
	req.NoError(err)
	req.Empty(res.Rows)

	res, err = b.Select("users", "id = 9", driver.SelectOpts{})
	req.NoError(err)
	req.Len(res.Rows, 1)
	req.Equal("alice", res.Rows[0]["name"])
}

func TestBinaryKeys(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	b := newTestDriver(t)

	id := []byte{0x01, 0x89, 0xae, 0xf2, 0x8c, 0x01, 0x4a, 0x02, 0x9f, 0x3b, 0x0c, 0x8d, 0x2e, 0x4f, 0x5a, 0x6b}
	_, err := b.Insert("sessions", "id", map[string]any{"id": id, "user": "alice"})
	req.NoError(err)

	res, err := b.Select("sessions", "id = x'0189aef28c014a029f3b0c8d2e4f5a6b'", driver.SelectOpts{})
	req.NoError(err)
	req.Len(res.Rows, 1)
	req.Equal(id, res.Rows[0]["id"])
}

func TestTruncateResetsSequence(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	b := newTestDriver(t)

	key, err := b.Insert("users", "id", map[string]any{"name": "alice"})
	req.NoError(err)
	req.Equal(int64(1), key)

	// The fast clear resets the key sequence, so the next insert starts at
	// one again.
	affected, err := b.Truncate("users", false)
	req.NoError(err)
	req.Equal(int64(1), affected)

	key, err = b.Insert("users", "id", map[string]any{"name": "bob"})
	req.NoError(err)
	req.Equal(int64(1), key)

	// Row-wise clearing keeps the sequence running.
	_, err = b.Truncate("users", true)
	req.NoError(err)

	key, err = b.Insert("users", "id", map[string]any{"name": "carol"})
	req.NoError(err)
	req.Equal(int64(2), key)
}

func TestRowWiseTruncate(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	b := newTestDriver(t)

	for i := 0; i < 3; i++ {
		_, err := b.Insert("users", "id", map[string]any{"n": i})
		req.NoError(err)
	}

	affected, err := b.Truncate("users", true)
	req.NoError(err)
	req.Equal(int64(3), affected)

	res, err := b.Select("users", "", driver.SelectOpts{})
	req.NoError(err)
	req.Empty(res.Rows)
}

func TestPersistence(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	dir := t.TempDir()
	b, err := New(&Config{Location: dir, Format: rowenc.MsgPack})
	req.NoError(err)
	_, err = b.Insert("users", "id", map[string]any{"name": "alice"})
	req.NoError(err)
	req.NoError(b.Close())

	b, err = New(&Config{Location: dir})
	req.NoError(err)
	defer func() { _ = b.Close() }()

	res, err := b.Select("users", "", driver.SelectOpts{})
	req.NoError(err)
	req.Len(res.Rows, 1)
	req.Equal("alice", res.Rows[0]["name"])
}

func TestClosed(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	b := newTestDriver(t)

	req.NoError(b.Close())
	req.NoError(b.Close())

	_, err := b.Select("users", "", driver.SelectOpts{})
	req.ErrorIs(err, driver.ErrClosed)
}
