package workspace

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/attrkit/internal/attribute"
	"github.com/conduit-lang/attrkit/internal/codec/xmlio"
	"github.com/conduit-lang/attrkit/internal/resource"
	"github.com/conduit-lang/attrkit/internal/store"
)

const version1Doc = `<?xml version="1.0"?>
<SMTK_AttributeResource Version="1">
  <Definitions>
    <AttDef Type="Boundary">
      <ItemDefinitions>
        <Double Name="pressure"/>
      </ItemDefinitions>
    </AttDef>
  </Definitions>
  <Attributes>
    <Att Name="inlet" Type="Boundary">
      <Items>
        <Double Name="pressure">2.5</Double>
      </Items>
    </Att>
  </Attributes>
</SMTK_AttributeResource>`

func newWorkspace(t *testing.T) (*Workspace, *store.Store) {
	t.Helper()
	s, err := store.Open(store.DriverSQLite, ":memory:", "docs")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return New(s, nil, nil), s
}

func sampleDocument(t *testing.T) string {
	t.Helper()
	r := attribute.NewResource(uuid.New())
	def, err := r.CreateDefinition("Material", "")
	require.NoError(t, err)
	require.NoError(t, def.AddItemDefinition(attribute.NewDoubleItemDefinition("density")))
	att, err := r.CreateAttribute("steel", "Material")
	require.NoError(t, err)
	require.NoError(t, att.FindValue("density").SetValue(0, 7.8))
	body, err := xmlio.WriteString(r)
	require.NoError(t, err)
	return body
}

func TestImport_StoresVersion3AndHosts(t *testing.T) {
	ctx := context.Background()
	w, s := newWorkspace(t)

	loaded, err := w.Import(ctx, "bc", strings.NewReader(version1Doc), false)
	require.NoError(t, err)
	assert.False(t, loaded.Log.HasErrors(), loaded.Log.String())
	assert.Equal(t, "bc", loaded.Resource.Name())
	assert.True(t, w.IsLoaded(loaded.Resource.ID()))

	doc, err := s.GetByName(ctx, "bc")
	require.NoError(t, err)
	assert.Equal(t, xmlio.CurrentVersion, doc.Version)
	assert.Equal(t, loaded.Resource.ID(), doc.ID)
	assert.Contains(t, doc.Body, `Version="3"`)
}

func TestImport_RequiresName(t *testing.T) {
	w, _ := newWorkspace(t)
	_, err := w.Import(context.Background(), "  ", strings.NewReader(version1Doc), false)
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestImport_FatalDocument(t *testing.T) {
	w, _ := newWorkspace(t)
	_, err := w.Import(context.Background(), "bad", strings.NewReader(`<Other/>`), false)
	assert.ErrorIs(t, err, xmlio.ErrDocumentFatal)
}

func TestImport_ExistingName(t *testing.T) {
	ctx := context.Background()
	w, s := newWorkspace(t)

	first, err := w.Import(ctx, "mat", strings.NewReader(sampleDocument(t)), false)
	require.NoError(t, err)

	_, err = w.Import(ctx, "mat", strings.NewReader(version1Doc), false)
	assert.ErrorIs(t, err, store.ErrDocumentExists)

	second, err := w.Import(ctx, "mat", strings.NewReader(version1Doc), true)
	require.NoError(t, err)
	assert.False(t, w.IsLoaded(first.Resource.ID()))
	assert.NotNil(t, second.Resource.FindAttribute("inlet"))

	docs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, second.Resource.ID(), docs[0].ID)
}

// failingDocs fails every write once failWrites is set
type failingDocs struct {
	store.Documents
	failWrites bool
}

var errDiskFull = errors.New("disk full")

func (f *failingDocs) Save(ctx context.Context, doc *store.Document) error {
	if f.failWrites {
		return errDiskFull
	}
	return f.Documents.Save(ctx, doc)
}

func (f *failingDocs) Replace(ctx context.Context, oldID uuid.UUID, doc *store.Document) error {
	if f.failWrites {
		return errDiskFull
	}
	return f.Documents.Replace(ctx, oldID, doc)
}

func TestImport_FailedReplaceKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	_, s := newWorkspace(t)
	docs := &failingDocs{Documents: s}
	w := New(docs, nil, nil)

	first, err := w.Import(ctx, "mat", strings.NewReader(sampleDocument(t)), false)
	require.NoError(t, err)

	docs.failWrites = true
	_, err = w.Import(ctx, "mat", strings.NewReader(version1Doc), true)
	assert.ErrorIs(t, err, errDiskFull)

	doc, err := s.GetByName(ctx, "mat")
	require.NoError(t, err)
	assert.Equal(t, first.Resource.ID(), doc.ID)
	assert.True(t, w.IsLoaded(first.Resource.ID()))

	docs.failWrites = false
	second, err := w.Import(ctx, "mat", strings.NewReader(version1Doc), true)
	require.NoError(t, err)
	assert.False(t, w.IsLoaded(first.Resource.ID()))
	_, err = s.Get(ctx, first.Resource.ID())
	assert.True(t, store.IsNotFound(err))
	assert.NotNil(t, second.Resource.FindAttribute("inlet"))
}

func TestImport_SameDocumentTwoNames(t *testing.T) {
	ctx := context.Background()
	w, _ := newWorkspace(t)
	body := sampleDocument(t)

	a, err := w.Import(ctx, "a", strings.NewReader(body), false)
	require.NoError(t, err)
	b, err := w.Import(ctx, "b", strings.NewReader(body), false)
	require.NoError(t, err)
	assert.NotEqual(t, a.Resource.ID(), b.Resource.ID())

	docs, err := w.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestLoad_ParsesOnceAndReuses(t *testing.T) {
	ctx := context.Background()
	w, _ := newWorkspace(t)

	imported, err := w.Import(ctx, "mat", strings.NewReader(sampleDocument(t)), false)
	require.NoError(t, err)
	id := imported.Resource.ID()
	require.True(t, w.Unload(id))

	loaded, err := w.Load(ctx, "mat")
	require.NoError(t, err)
	assert.Equal(t, id, loaded.Resource.ID())
	assert.Equal(t, 7.8, loaded.Resource.FindAttribute("steel").FindValue("density").Float(0))

	again, err := w.LoadID(ctx, id)
	require.NoError(t, err)
	assert.Same(t, loaded.Resource, again.Resource)
}

func TestLoad_Missing(t *testing.T) {
	w, _ := newWorkspace(t)
	_, err := w.Load(context.Background(), "nope")
	assert.True(t, store.IsNotFound(err))
}

func TestLoadID_ForeignResource(t *testing.T) {
	w, _ := newWorkspace(t)
	other := resource.NewGeneric(uuid.New(), "model.Resource", "", "resource.Resource")
	require.NoError(t, w.Manager().Register(other))

	_, err := w.LoadID(context.Background(), other.ID())
	assert.ErrorIs(t, err, ErrNotAttributeResource)
}

func TestSave_WritesBack(t *testing.T) {
	ctx := context.Background()
	w, s := newWorkspace(t)

	loaded, err := w.Import(ctx, "mat", strings.NewReader(sampleDocument(t)), false)
	require.NoError(t, err)
	res := loaded.Resource

	lock := w.Lock(res.ID())
	lock.Lock()
	require.NoError(t, res.FindAttribute("steel").FindValue("density").SetValue(0, 8.1))
	_, err = w.Save(ctx, res)
	lock.Unlock()
	require.NoError(t, err)

	doc, err := s.Get(ctx, res.ID())
	require.NoError(t, err)
	assert.Contains(t, doc.Body, "8.1")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	w, _ := newWorkspace(t)

	loaded, err := w.Import(ctx, "mat", strings.NewReader(sampleDocument(t)), false)
	require.NoError(t, err)
	require.NoError(t, w.Delete(ctx, "mat"))
	assert.False(t, w.IsLoaded(loaded.Resource.ID()))
	assert.True(t, store.IsNotFound(w.Delete(ctx, "mat")))
}
