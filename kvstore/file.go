package kvstore

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-stack/stack"
	"gopkg.in/yaml.v2"

	"github.com/TeamNorCal/ledsense/errors"
)

// File is a Store that keeps every namespace as a YAML document named
// <namespace>.yaml inside a directory. Commits rewrite the document through a
// temporary file and a rename so readers never observe a partial write.
type File struct {
	dir string
	sync.Mutex
}

// NewFile returns a Store rooted at dir, creating the directory if needed.
func NewFile(dir string) (store *File, err errors.Error) {
	if errGo := os.MkdirAll(dir, 0o755); errGo != nil {
		return nil, errors.Wrap(errGo).With("dir", dir).With("stack", stack.Trace().TrimRuntime())
	}
	return &File{dir: dir}, nil
}

// Open implements Store.
func (f *File) Open(namespace string) (Bucket, error) {
	if namespace == "" || strings.ContainsAny(namespace, `/\`) || namespace == "." || namespace == ".." {
		return nil, errors.New("invalid namespace").With("namespace", namespace).With("stack", stack.Trace().TrimRuntime())
	}
	return &fileBucket{store: f, fn: filepath.Join(f.dir, namespace+".yaml")}, nil
}

// read loads a namespace document, an absent file is an empty namespace. The
// caller must hold the store lock.
func (f *File) read(fn string) (values map[string]string, err errors.Error) {
	values = map[string]string{}
	data, errGo := ioutil.ReadFile(fn)
	if errGo != nil {
		if os.IsNotExist(errGo) {
			return values, nil
		}
		return nil, errors.Wrap(errGo).With("file", fn).With("stack", stack.Trace().TrimRuntime())
	}
	if errGo = yaml.Unmarshal(data, &values); errGo != nil {
		return nil, errors.Wrap(errGo).With("file", fn).With("stack", stack.Trace().TrimRuntime())
	}
	return values, nil
}

type fileBucket struct {
	store *File
	fn    string
	staged
}

func (b *fileBucket) Set(key, value string) error {
	b.stage(key, value)
	return nil
}

func (b *fileBucket) GetString(key string) (string, bool, error) {
	if v, ok := b.lookup(key); ok {
		return v, true, nil
	}
	b.store.Lock()
	defer b.store.Unlock()
	values, err := b.store.read(b.fn)
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (b *fileBucket) Commit() error {
	pending := b.take()
	if len(pending) == 0 {
		return nil
	}

	b.store.Lock()
	defer b.store.Unlock()

	values, err := b.store.read(b.fn)
	if err != nil {
		return err
	}
	for k, v := range pending {
		values[k] = v
	}

	data, errGo := yaml.Marshal(values)
	if errGo != nil {
		return errors.Wrap(errGo).With("file", b.fn).With("stack", stack.Trace().TrimRuntime())
	}

	tmp, errGo := ioutil.TempFile(filepath.Dir(b.fn), filepath.Base(b.fn)+".*")
	if errGo != nil {
		return errors.Wrap(errGo).With("file", b.fn).With("stack", stack.Trace().TrimRuntime())
	}
	defer os.Remove(tmp.Name())

	if _, errGo = tmp.Write(data); errGo == nil {
		errGo = tmp.Sync()
	}
	if errClose := tmp.Close(); errGo == nil {
		errGo = errClose
	}
	if errGo != nil {
		return errors.Wrap(errGo).With("file", tmp.Name()).With("stack", stack.Trace().TrimRuntime())
	}

	if errGo = os.Rename(tmp.Name(), b.fn); errGo != nil {
		return errors.Wrap(errGo).With("file", b.fn).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}
