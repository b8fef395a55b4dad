// Package store persists variables and user functions in a bbolt database.
//
// Values are kept as the text of expressions that evaluate to them, so the
// store does not depend on the calculator's value types.
package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketVars  = "vars"
	bucketFuncs = "funcs"
)

// ErrNotFound is returned when deleting an entry that doesn't exist.
var ErrNotFound = errors.New("no such entry")

var initDB = map[string]func(tx *bolt.Tx) error{
	"initialize variable table": func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketVars))
		return err
	},
	"initialize function table": func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketFuncs))
		return err
	},
}

// Var is a stored variable.
type Var struct {
	Name string
	// Value is the text of an expression for the variable's value.
	Value string
}

// Func is a stored user function.
type Func struct {
	Name string
	// Params is the comma-separated parameter list. It contains no spaces.
	Params string
	Body   string
}

// Store is a database of variables and functions. It is safe for concurrent
// use, but only one process can open a database at a time.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path, creating its directory if
// needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetVar sets the text of a variable.
func (s *Store) SetVar(name, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketVars)).Put([]byte(name), []byte(value))
	})
}

// DelVar deletes a variable.
func (s *Store) DelVar(name string) error {
	return s.del(bucketVars, name)
}

// ClearVars deletes all variables.
func (s *Store) ClearVars() error {
	return s.clear(bucketVars)
}

// Vars returns all variables sorted by name.
func (s *Store) Vars() ([]Var, error) {
	var vars []Var
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketVars)).ForEach(func(k, v []byte) error {
			vars = append(vars, Var{Name: string(k), Value: string(v)})
			return nil
		})
	})
	return vars, err
}

// SetFunc adds or replaces a function.
func (s *Store) SetFunc(f Func) error {
	if strings.ContainsAny(f.Params, " \t\n") {
		return fmt.Errorf("parameters of %s contain spaces: %q", f.Name, f.Params)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketFuncs)).Put([]byte(f.Name), []byte(f.Params+" "+f.Body))
	})
}

// DelFunc deletes a function.
func (s *Store) DelFunc(name string) error {
	return s.del(bucketFuncs, name)
}

// ClearFuncs deletes all functions.
func (s *Store) ClearFuncs() error {
	return s.clear(bucketFuncs)
}

// Funcs returns all functions sorted by name.
func (s *Store) Funcs() ([]Func, error) {
	var funcs []Func
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketFuncs)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			params, body, _ := strings.Cut(string(v), " ")
			funcs = append(funcs, Func{Name: string(k), Params: params, Body: body})
		}
		return nil
	})
	return funcs, err
}

func (s *Store) del(bucket, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b.Get([]byte(name)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(name))
	})
}

func (s *Store) clear(bucket string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucket))
		return err
	})
}

// Dump writes the variables and then the functions as lines of text, one
// "name value" or "name params body" per line.
func (s *Store) Dump(w io.Writer) error {
	vars, err := s.Vars()
	if err != nil {
		return err
	}
	funcs, err := s.Funcs()
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, v := range vars {
		fmt.Fprintf(bw, "%s %s\n", v.Name, v.Value)
	}
	for _, f := range funcs {
		fmt.Fprintf(bw, "%s %s %s\n", f.Name, f.Params, f.Body)
	}
	return bw.Flush()
}
