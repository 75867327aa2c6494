package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Offline inspector for the message store: dumps persisted conversations as
// a table, straight from Badger. Read-only; safe to run against a live
// data directory copy.
func main() {
	dbPath := flag.String("db", "data/badger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	color.Bold.Printf("Scanning %s with prefix %q\n\n", *dbPath, *prefix)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Conversation", "At", "Sender", "Receiver", "Content"})
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

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				var record struct {
					SenderID   string `json:"senderId"`
					ReceiverID string `json:"receiverId"`
					Text       string `json:"text"`
					ImageURL   string `json:"imageUrl"`
					At         int64  `json:"at"`
				}
				if err := json.Unmarshal(v, &record); err != nil {
					// Log and keep scanning instead of stopping the dump.
					fmt.Printf("Error unmarshaling key %s: %v\n", key, err)
					return nil
				}

				content := record.Text
				if content == "" {
					content = color.Gray.Sprint(record.ImageURL)
				}
				table.Append([]string{
					conversationOf(key),
					time.Unix(0, record.At).UTC().Format(time.RFC3339),
					record.SenderID,
					record.ReceiverID,
					content,
				})
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
		log.Fatal("Scan failed: ", err)
	}

	table.Render()
	color.Green.Printf("\n%d messages\n", count)
}

// conversationOf extracts the "lo:hi" pair from a message key
// ("msg:{lo}:{hi}:{timestamp}:{uuid}").
func conversationOf(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 3 {
		return key
	}
	return parts[1] + ":" + parts[2]
}
