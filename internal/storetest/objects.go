package storetest

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/hypernova-labs/catalog-service/internal/database"
	"github.com/hypernova-labs/catalog-service/internal/models"
)

type object struct {
	data        []byte
	contentType string
	etag        string
	modified    time.Time
}

// ObjectStore es un bucket en memoria; el ETag es el MD5 del contenido, como en S3
type ObjectStore struct {
	mu       sync.Mutex
	objects  map[string]object
	failures map[string]error
	open     int
	lists    int
}

// NewObjectStore crea un bucket vacío
func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		objects:  map[string]object{},
		failures: map[string]error{},
	}
}

// Put guarda un objeto directamente y retorna su ETag
func (o *ObjectStore) Put(name string, data []byte, contentType string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	sum := md5.Sum(data)
	etag := hex.EncodeToString(sum[:])
	o.objects[name] = object{data: data, contentType: contentType, etag: etag, modified: time.Now().UTC()}
	return etag
}

// FailOn hace que la próxima llamada a op ("Upload", "List", "Stat", "Open", "Delete") retorne err
func (o *ObjectStore) FailOn(op string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures[op] = err
}

// OpenReaders retorna cuántos streams abiertos no se cerraron
func (o *ObjectStore) OpenReaders() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

// ListCalls retorna cuántas veces se recorrió el bucket
func (o *ObjectStore) ListCalls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lists
}

// Names retorna los nombres de los objetos guardados
func (o *ObjectStore) Names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, 0, len(o.objects))
	for name := range o.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (o *ObjectStore) fail(op string) error {
	if err, ok := o.failures[op]; ok {
		delete(o.failures, op)
		return err
	}
	return nil
}

func (o *ObjectStore) Upload(ctx context.Context, objectName string, body io.ReadSeeker, size int64, contentType string) (*models.Image, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	if err := o.fail("Upload"); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.mu.Unlock()

	o.Put(objectName, data, contentType)
	return o.Stat(ctx, objectName)
}

func (o *ObjectStore) List(ctx context.Context) ([]models.Image, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lists++
	if err := o.fail("List"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(o.objects))
	for name := range o.objects {
		names = append(names, name)
	}
	sort.Strings(names)

	images := make([]models.Image, 0, len(names))
	for _, name := range names {
		images = append(images, o.image(name, o.objects[name]))
	}
	return images, nil
}

func (o *ObjectStore) Stat(ctx context.Context, objectName string) (*models.Image, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.fail("Stat"); err != nil {
		return nil, err
	}
	obj, ok := o.objects[objectName]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", objectName, database.ErrNotFound)
	}
	image := o.image(objectName, obj)
	return &image, nil
}

func (o *ObjectStore) Open(ctx context.Context, objectName string) (io.ReadCloser, *models.Image, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.fail("Open"); err != nil {
		return nil, nil, err
	}
	obj, ok := o.objects[objectName]
	if !ok {
		return nil, nil, fmt.Errorf("object %s: %w", objectName, database.ErrNotFound)
	}
	o.open++
	image := o.image(objectName, obj)
	return &trackedReader{Reader: bytes.NewReader(obj.data), store: o}, &image, nil
}

func (o *ObjectStore) Delete(ctx context.Context, objectName string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.fail("Delete"); err != nil {
		return err
	}
	if _, ok := o.objects[objectName]; !ok {
		return fmt.Errorf("object %s: %w", objectName, database.ErrNotFound)
	}
	delete(o.objects, objectName)
	return nil
}

func (o *ObjectStore) image(name string, obj object) models.Image {
	size := int64(len(obj.data))
	modified := obj.modified
	return models.Image{
		ObjectName:   name,
		ETag:         obj.etag,
		Size:         &size,
		LastModified: &modified,
		ContentType:  obj.contentType,
	}
}

type trackedReader struct {
	*bytes.Reader
	store  *ObjectStore
	closed bool
}

func (r *trackedReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.store.mu.Lock()
	r.store.open--
	r.store.mu.Unlock()
	return nil
}

// ImageIndex es un índice ETag -> objeto en memoria
type ImageIndex struct {
	mu      sync.Mutex
	entries map[string]string
	err     error
}

// NewImageIndex crea un índice vacío
func NewImageIndex() *ImageIndex {
	return &ImageIndex{entries: map[string]string{}}
}

// Set fuerza una entrada, aunque no corresponda a ningún objeto
func (i *ImageIndex) Set(etag, objectName string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[etag] = objectName
}

// Get retorna la entrada de un ETag
func (i *ImageIndex) Get(etag string) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	name, ok := i.entries[etag]
	return name, ok
}

// Break hace que todas las operaciones fallen con err (nil las repara)
func (i *ImageIndex) Break(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.err = err
}

func (i *ImageIndex) LookupObject(ctx context.Context, etag string) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return "", i.err
	}
	name, ok := i.entries[etag]
	if !ok {
		return "", database.ErrNotFound
	}
	return name, nil
}

func (i *ImageIndex) RememberObject(ctx context.Context, etag, objectName string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return i.err
	}
	i.entries[etag] = objectName
	return nil
}

func (i *ImageIndex) ForgetObject(ctx context.Context, etag string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return i.err
	}
	delete(i.entries, etag)
	return nil
}

// Event es un evento registrado por Publisher
type Event struct {
	Name string
	Data map[string]any
}

// Publisher registra los eventos publicados
type Publisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewPublisher crea un Publisher; si err no es nil, cada Publish falla con él
func NewPublisher(err error) *Publisher {
	return &Publisher{err: err}
}

func (p *Publisher) Publish(ctx context.Context, name string, data map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Event{Name: name, Data: data})
	return p.err
}

// Names retorna los nombres de los eventos en orden de publicación
func (p *Publisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.Name)
	}
	return names
}
