package tagmap

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	// package registers itself
	_ "github.com/lib/pq"

	// package registers itself
	_ "github.com/mattn/go-sqlite3"
)

const (
	sqlite   = "sqlite3"
	postgres = "postgres"

	// DefaultDriverName is used as the default sql driver (sqlite3).
	DefaultDriverName = sqlite

	// DefaultDataSourceName is used as the default data source (data.sqlite).
	DefaultDataSourceName = "data.sqlite"
)

const (
	cmdCreateDB = `
		create table entries (
			item text not null,
			tag text not null,
			tag_index integer not null,
			unique (item, tag)
		);
	`

	cmdGetEntries = `
		select item, tag, tag_index from entries
		where item in (%s);
	`

	cmdGetAllEntries = `
		select item, tag, tag_index from entries;
	`

	cmdInsertEntry = `
		insert or replace into entries (item, tag, tag_index)
		values ($1, $2, $3);
	`

	cmdInsertEntryPQ = `
		insert into entries (item, tag, tag_index)
		values ($1, $2, $3)
		on conflict (item, tag) do update set tag_index = excluded.tag_index;
	`

	cmdDeleteEntry = `
		delete from entries
		where item = $1 and tag = $2;
	`

	cmdDropItem = `
		delete from entries
		where item = $1;
	`
)

type commands struct {
	createDB    string
	getEntries  string
	getAll      string
	insertEntry string
	deleteEntry string
	dropItem    string
}

type storage struct {
	db       *sql.DB
	commands commands
}

func getCommands(driverName string) commands {
	c := commands{
		createDB:    cmdCreateDB,
		getEntries:  cmdGetEntries,
		getAll:      cmdGetAllEntries,
		insertEntry: cmdInsertEntry,
		deleteEntry: cmdDeleteEntry,
		dropItem:    cmdDropItem,
	}

	if driverName == postgres {
		c.insertEntry = cmdInsertEntryPQ
	}

	return c
}

func newStorage(o StorageOptions) (*storage, error) {
	if o.DriverName == "" {
		o.DriverName = DefaultDriverName
	}

	if o.DataSourceName == "" {
		o.DataSourceName = DefaultDataSourceName
	}

	var initDB bool
	if o.DriverName == sqlite {
		if _, err := os.Stat(o.DataSourceName); os.IsNotExist(err) {
			initDB = true
		} else if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(o.DriverName, o.DataSourceName)
	if err != nil {
		return nil, err
	}

	c := getCommands(o.DriverName)

	if initDB {
		if _, err := db.Exec(c.createDB); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &storage{
		db:       db,
		commands: c,
	}, nil
}

func scanEntries(r *sql.Rows) ([]*Entry, error) {
	var e []*Entry
	for r.Next() {
		var (
			key, tag string
			tagIndex int
		)

		if err := r.Scan(&key, &tag, &tagIndex); err != nil {
			return nil, err
		}

		e = append(e, &Entry{
			Key:      key,
			Tag:      tag,
			TagIndex: tagIndex,
		})
	}

	return e, r.Err()
}

func (s *storage) Get(keys []string) ([]*Entry, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	params := make([]string, len(keys))
	paramArgs := make([]interface{}, len(keys))
	for i := range params {
		params[i] = fmt.Sprintf("$%d", i+1)
		paramArgs[i] = keys[i]
	}

	paramString := strings.Join(params, ", ")
	r, err := s.db.Query(fmt.Sprintf(s.commands.getEntries, paramString), paramArgs...)
	if err != nil {
		return nil, err
	}

	defer r.Close()
	return scanEntries(r)
}

func (s *storage) All() ([]*Entry, error) {
	r, err := s.db.Query(s.commands.getAll)
	if err != nil {
		return nil, err
	}

	defer r.Close()
	return scanEntries(r)
}

func (s *storage) Set(e *Entry) error {
	_, err := s.db.Exec(s.commands.insertEntry, e.Key, e.Tag, e.TagIndex)
	return err
}

func (s *storage) Remove(e *Entry) error {
	_, err := s.db.Exec(s.commands.deleteEntry, e.Key, e.Tag)
	return err
}

func (s *storage) Drop(key string) error {
	_, err := s.db.Exec(s.commands.dropItem, key)
	return err
}

func (s *storage) Close() {
	s.db.Close()
}
