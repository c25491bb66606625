// Package workspace loads attribute resources out of the document store,
// hosts them in a resource manager, and writes them back.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/attrkit/internal/attribute"
	"github.com/conduit-lang/attrkit/internal/codec/xmlio"
	"github.com/conduit-lang/attrkit/internal/logger"
	"github.com/conduit-lang/attrkit/internal/resource"
	"github.com/conduit-lang/attrkit/internal/store"
)

var (
	// ErrNotAttributeResource is returned when a registered id belongs to a
	// resource that is not an attribute resource
	ErrNotAttributeResource = errors.New("not an attribute resource")

	// ErrNameRequired is returned when importing without a document name
	ErrNameRequired = errors.New("document name is required")
)

// Workspace is safe for concurrent use. Loaded resources are shared; callers
// take Lock(id) around any use of a resource.
type Workspace struct {
	docs    store.Documents
	manager *resource.Manager
	log     *zap.Logger
}

// New creates a workspace over docs. A nil manager gets a fresh one.
func New(docs store.Documents, manager *resource.Manager, log *zap.Logger) *Workspace {
	if manager == nil {
		manager = resource.NewManager()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Workspace{docs: docs, manager: manager, log: log}
}

// Manager returns the manager hosting loaded resources
func (w *Workspace) Manager() *resource.Manager { return w.manager }

// Lock returns the lock guarding the resource with id
func (w *Workspace) Lock(id uuid.UUID) *sync.RWMutex {
	return w.manager.Lock(id)
}

// Loaded is a resource together with the records produced while parsing it
type Loaded struct {
	Resource *attribute.Resource
	Log      *logger.Logger
	Document *store.Document
}

// Parse reads a document into a fresh resource without touching the store
// or the manager. The resource resolves references through the manager.
func (w *Workspace) Parse(r io.Reader) (*attribute.Resource, *logger.Logger, error) {
	res := attribute.NewResource(uuid.Nil)
	log := logger.NewWithZap(w.log)
	if err := xmlio.Read(r, res, log); err != nil {
		return nil, log, err
	}
	res.SetFinder(w.manager)
	return res, log, nil
}

// Import parses body, stores it under name in the current format and hosts
// the resulting resource. An existing document with the same name is
// replaced only when replace is set.
func (w *Workspace) Import(ctx context.Context, name string, body io.Reader, replace bool) (*Loaded, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	res, log, err := w.Parse(body)
	if err != nil {
		return nil, err
	}
	res.SetName(name)

	existing, err := w.docs.GetByName(ctx, name)
	switch {
	case err == nil:
		if !replace {
			return nil, fmt.Errorf("%w: %q", store.ErrDocumentExists, name)
		}
	case store.IsNotFound(err):
		existing = nil
	default:
		return nil, err
	}

	// the same document imported under a second name gets its own identity
	other, err := w.docs.Get(ctx, res.ID())
	switch {
	case err == nil && other.Name != name:
		res.SetID(uuid.New())
	case err != nil && !store.IsNotFound(err):
		return nil, err
	}

	lock := w.manager.Lock(res.ID())
	lock.Lock()
	defer lock.Unlock()

	doc, err := w.document(res)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		err = w.docs.Replace(ctx, existing.ID, doc)
	} else {
		err = w.docs.Save(ctx, doc)
	}
	if err != nil {
		return nil, err
	}

	// the previous resource stays hosted until its replacement is stored
	if existing != nil {
		w.manager.Remove(existing.ID)
	}
	w.manager.Remove(res.ID())
	if err := w.manager.Register(res); err != nil {
		return nil, err
	}
	w.log.Info("imported resource",
		zap.String("name", name),
		zap.Stringer("id", res.ID()),
		zap.Int("warnings", log.Count(logger.Warning)))
	return &Loaded{Resource: res, Log: log, Document: doc}, nil
}

// Load returns the resource stored under name, parsing it on first use
func (w *Workspace) Load(ctx context.Context, name string) (*Loaded, error) {
	doc, err := w.docs.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return w.load(doc)
}

// LoadID returns the resource stored under id, parsing it on first use
func (w *Workspace) LoadID(ctx context.Context, id uuid.UUID) (*Loaded, error) {
	if res, ok, err := w.hosted(id); err != nil || ok {
		return &Loaded{Resource: res, Log: logger.New()}, err
	}
	doc, err := w.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return w.load(doc)
}

func (w *Workspace) load(doc *store.Document) (*Loaded, error) {
	lock := w.manager.Lock(doc.ID)
	lock.Lock()
	defer lock.Unlock()

	if res, ok, err := w.hosted(doc.ID); err != nil || ok {
		return &Loaded{Resource: res, Log: logger.New(), Document: doc}, err
	}

	res, log, err := w.Parse(strings.NewReader(doc.Body))
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", doc.Name, err)
	}
	res.SetID(doc.ID)
	res.SetName(doc.Name)
	if err := w.manager.Register(res); err != nil {
		return nil, err
	}
	w.log.Debug("loaded resource", zap.String("name", doc.Name), zap.Stringer("id", doc.ID))
	return &Loaded{Resource: res, Log: log, Document: doc}, nil
}

func (w *Workspace) hosted(id uuid.UUID) (*attribute.Resource, bool, error) {
	r, ok := w.manager.Find(id)
	if !ok {
		return nil, false, nil
	}
	res, ok := r.(*attribute.Resource)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrNotAttributeResource, id)
	}
	return res, true, nil
}

// Save writes res back to the store in the current format. The caller holds
// the resource's write lock.
func (w *Workspace) Save(ctx context.Context, res *attribute.Resource) (*store.Document, error) {
	if strings.TrimSpace(res.Name()) == "" {
		return nil, ErrNameRequired
	}
	return w.save(ctx, res)
}

func (w *Workspace) save(ctx context.Context, res *attribute.Resource) (*store.Document, error) {
	doc, err := w.document(res)
	if err != nil {
		return nil, err
	}
	if err := w.docs.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// document serializes res in the current format
func (w *Workspace) document(res *attribute.Resource) (*store.Document, error) {
	body, err := xmlio.WriteString(res)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %q: %w", res.Name(), err)
	}
	return &store.Document{
		ID:      res.ID(),
		Name:    res.Name(),
		Version: xmlio.CurrentVersion,
		Body:    body,
	}, nil
}

// Unload stops hosting the resource; the stored document is untouched
func (w *Workspace) Unload(id uuid.UUID) bool {
	return w.manager.Remove(id)
}

// Delete removes the document called name and stops hosting its resource
func (w *Workspace) Delete(ctx context.Context, name string) error {
	doc, err := w.docs.GetByName(ctx, name)
	if err != nil {
		return err
	}
	w.manager.Remove(doc.ID)
	return w.docs.Delete(ctx, doc.ID)
}

// List returns the stored documents without bodies
func (w *Workspace) List(ctx context.Context) ([]store.Document, error) {
	return w.docs.List(ctx)
}

// IsLoaded reports whether the resource with id is hosted
func (w *Workspace) IsLoaded(id uuid.UUID) bool {
	_, ok := w.manager.Find(id)
	return ok
}
