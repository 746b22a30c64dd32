// Command inspect dumps the contents of a lynxchat BadgerDB store in a
// readable table, for debugging a live or copied data directory.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"github.com/Lynxchester/lynxchat/domain"
	"github.com/Lynxchester/lynxchat/repositories"
)

func main() {
	dbPath := flag.String("db", "./badger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg: or user:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	switch *prefix {
	case "msg:":
		table.SetHeader([]string{"Room", "Created At", "Sender", "Content"})
	case "user:":
		table.SetHeader([]string{"Username", "User ID", "Created At"})
	default:
		table.SetHeader([]string{"Key", "Value"})
	}

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append(row(*prefix, key, v))
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
	fmt.Printf("\n%d entries under prefix %q\n", count, *prefix)
}

// row decodes one stored value into table cells. A value that fails to
// decode is shown raw instead of aborting the whole scan.
func row(prefix, key string, value []byte) []string {
	switch prefix {
	case "msg:":
		var m domain.Message
		if err := json.Unmarshal(value, &m); err != nil {
			return []string{key, "?", "?", string(value)}
		}
		return []string{string(m.Room), m.CreatedAt.Format("2006-01-02 15:04:05"), m.Sender, m.Content}
	case "user:":
		var u repositories.User
		if err := json.Unmarshal(value, &u); err != nil {
			return []string{key, "?", string(value)}
		}
		return []string{u.Username, u.ID, u.CreatedAt.Format("2006-01-02 15:04:05")}
	default:
		return []string{key, string(value)}
	}
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil)
	return badger.Open(opts)
}
