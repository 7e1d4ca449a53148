package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"message-board/contract"
	"message-board/domain"
	"message-board/repositories"
	"message-board/search"
	"message-board/shortcode"
	"os"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

var header = color.New(color.BgBlack, color.FgGreen, color.OpBold)

func main() {
	dbPath := flag.String("db", "./data/feed", "Path to badger DB")
	namespace := flag.String("namespace", "", "Namespace to dump, all of them when empty")
	raw := flag.Bool("raw", false, "Print message bodies without short-code substitution")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	records := repositories.NewRecordRepository(db, slog.New(slog.DiscardHandler))
	namespaces := []string{*namespace}
	if *namespace == "" {
		if namespaces, err = records.Namespaces(); err != nil {
			log.Fatal(err)
		}
	}

	transformer := shortcode.MustDefault()
	for _, ns := range namespaces {
		if err := dump(records, ns, transformer, *raw); err != nil {
			log.Fatal(err)
		}
	}
}

func dump(records contract.RecordLog, namespace string, transformer *shortcode.Transformer, raw bool) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Seq", "Username", "Message", "Email", "Date", "Time", "Lang", "Key"})
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
	err := records.Scan(namespace, func(entry contract.Entry) error {
		record := domain.RecordFromFields(entry.Fields)
		body := record.Message
		if !raw {
			body = transformer.Transform(body)
		}
		table.Append([]string{
			strconv.FormatUint(entry.Seq, 10),
			record.Username,
			body,
			record.Email,
			record.Date,
			record.Time,
			search.Language(record.Message),
			entry.Key,
		})
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", namespace, err)
	}

	fmt.Println(header.Render(fmt.Sprintf(" %s · %d records ", namespace, count)))
	table.Render()
	fmt.Println()
	return nil
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil {
		// A crashed daemon can leave a value log that needs truncating first.
		if strings.Contains(err.Error(), "Log truncate required") {
			repair, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil).WithBypassLockGuard(true))
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			_ = repair.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
