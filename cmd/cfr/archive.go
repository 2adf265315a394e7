// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/spf13/cobra"
	"go.mozilla.org/pkcs7"

	"github.com/nsmigrate/cfr"
	"github.com/nsmigrate/cfr/internal/log"
)

var (
	archiveOutput   string
	archiveMapFlags []string
	archiveMapFile  string
	archiveDefault  bool
	archiveWorkers  int
)

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <input.jar>",
		Short: "Rewrite every .class member of a JAR/ZIP bundle",
		Long: "Archive walks a JAR/ZIP, applies the mapping to every .class member's " +
			"string table, and copies every other member byte-for-byte, including " +
			"META-INF/MANIFEST.MF. It never re-signs or re-verifies the archive.",
		Args: cobra.ExactArgs(1),
		RunE: runArchive,
	}
	cmd.Flags().StringVarP(&archiveOutput, "output", "o", "", "output archive path (required)")
	cmd.Flags().StringArrayVar(&archiveMapFlags, "map", nil, "inline mapping entry, from=to (repeatable)")
	cmd.Flags().StringVar(&archiveMapFile, "map-file", "", "properties file of from=to mapping entries")
	cmd.Flags().BoolVar(&archiveDefault, "default-mapping", false, "seed the mapping with the embedded javax->jakarta defaults")
	cmd.Flags().IntVar(&archiveWorkers, "workers", 4, "number of members rewritten concurrently")
	cmd.MarkFlagRequired("output")
	return cmd
}

// archiveMember holds one archive entry's outcome: data is either the
// rewritten bytes (for a .class member) or a verbatim passthrough, computed
// concurrently and written back in original archive order.
type archiveMember struct {
	name     string
	data     []byte
	modified bool
}

func runArchive(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	mapping, err := buildMappingFromFlags(archiveDefault, archiveMapFile, archiveMapFlags)
	if err != nil {
		return err
	}

	inputPath := args[0]
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputPath, err)
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("mapping %s: %w", inputPath, err)
	}
	defer data.Unmap()

	kind, err := sniffInputKind(data)
	if err != nil {
		return err
	}
	if kind != inputKindArchive {
		return fmt.Errorf("cfr: %s does not look like a JAR/ZIP archive; did you mean 'cfr rewrite'?", inputPath)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", inputPath, err)
	}

	results := make([]archiveMember, len(reader.File))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	jobs := make(chan int)

	workerCount := archiveWorkers
	if workerCount < 1 {
		workerCount = 1
	}
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				member, err := processArchiveMember(reader.File[i], mapping, logger)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("member %s: %w", reader.File[i].Name, err)
					}
					mu.Unlock()
					continue
				}
				results[i] = member
			}
		}()
	}
	for i := range reader.File {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}

	out, err := os.Create(archiveOutput)
	if err != nil {
		return fmt.Errorf("creating %s: %w", archiveOutput, err)
	}
	defer out.Close()

	writer := zip.NewWriter(out)
	for i, original := range reader.File {
		member := results[i]
		header := original.FileHeader
		w, err := writer.CreateHeader(&header)
		if err != nil {
			return fmt.Errorf("writing member %s: %w", original.Name, err)
		}
		if _, err := w.Write(member.data); err != nil {
			return fmt.Errorf("writing member %s: %w", original.Name, err)
		}
		if member.modified {
			logger.Infof("rewrote archive member %s", member.name)
		}
	}
	return writer.Close()
}

func processArchiveMember(file *zip.File, mapping *cfr.MappingTable, logger *log.Helper) (archiveMember, error) {
	rc, err := file.Open()
	if err != nil {
		return archiveMember{}, fmt.Errorf("opening member %s: %w", file.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return archiveMember{}, fmt.Errorf("reading member %s: %w", file.Name, err)
	}

	if isSignatureEntry(file.Name) {
		reportSignature(file.Name, data, logger)
		return archiveMember{name: file.Name, data: data}, nil
	}

	if !strings.HasSuffix(file.Name, ".class") {
		return archiveMember{name: file.Name, data: data}, nil
	}

	rewritten, err := cfr.Transform(data, mapping)
	if err != nil {
		logger.Warnf("passing %s through unrewritten: %v", file.Name, err)
		return archiveMember{name: file.Name, data: data}, nil
	}
	return archiveMember{name: file.Name, data: rewritten, modified: !bytes.Equal(rewritten, data)}, nil
}

// isSignatureEntry reports whether name is a JAR signature file
// (META-INF/*.RSA or META-INF/*.DSA).
func isSignatureEntry(name string) bool {
	if !strings.HasPrefix(name, "META-INF/") {
		return false
	}
	return strings.HasSuffix(name, ".RSA") || strings.HasSuffix(name, ".DSA")
}

// reportSignature parses (but never validates) a JAR's PKCS#7
// signature block and logs that re-signing will be required after
// rewriting, reusing the teacher's security.go posture of parsing an
// Authenticode PKCS#7 blob to report on it without verifying trust.
func reportSignature(name string, data []byte, logger *log.Helper) {
	p7, err := pkcs7.Parse(data)
	if err != nil {
		logger.Warnf("%s: signature entry could not be parsed (%v); archive may already be malformed", name, err)
		return
	}
	logger.Warnf("%s: archive is signed by %d signer(s); rewriting invalidates this signature, re-sign afterwards",
		name, len(p7.Signers))
}
