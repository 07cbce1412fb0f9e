// Copyright 2026 Glyphica Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Seeder writes sample icon library files into a catalog directory so
// the service has something to search before real icon sets are
// installed.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type entry struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Synonyms []string `json:"synonyms,omitempty"`
}

// samples maps library names to their seed icons. Categories follow
// the upstream icon sets.
var samples = map[string][]entry{
	"bootstrap": {
		{Name: "house-door", Category: "Buildings", Synonyms: []string{"home"}},
		{Name: "house-heart", Category: "Buildings"},
		{Name: "building", Category: "Buildings", Synonyms: []string{"office"}},
		{Name: "bank", Category: "Buildings", Synonyms: []string{"finance", "museum"}},
		{Name: "shop", Category: "Buildings", Synonyms: []string{"store", "market"}},
		{Name: "arrow-left", Category: "Arrows"},
		{Name: "arrow-right", Category: "Arrows"},
		{Name: "arrow-up-circle", Category: "Arrows"},
		{Name: "arrow-repeat", Category: "Arrows", Synonyms: []string{"refresh", "reload"}},
		{Name: "alarm", Category: "Time", Synonyms: []string{"clock", "reminder"}},
		{Name: "calendar-event", Category: "Time"},
		{Name: "hourglass-split", Category: "Time"},
		{Name: "envelope", Category: "Communication", Synonyms: []string{"mail", "email"}},
		{Name: "telephone", Category: "Communication", Synonyms: []string{"phone", "call"}},
		{Name: "chat-dots", Category: "Communication", Synonyms: []string{"message"}},
		{Name: "search", Category: "Actions", Synonyms: []string{"magnifier", "find"}},
		{Name: "trash", Category: "Actions", Synonyms: []string{"delete", "remove"}},
		{Name: "pencil-square", Category: "Actions", Synonyms: []string{"edit", "write"}},
		{Name: "gear", Category: "Actions", Synonyms: []string{"settings", "preferences"}},
		{Name: "cloud-download", Category: "Files", Synonyms: []string{"save"}},
	},
	"lucide": {
		{Name: "home", Category: "Buildings"},
		{Name: "warehouse", Category: "Buildings"},
		{Name: "landmark", Category: "Buildings", Synonyms: []string{"bank", "museum"}},
		{Name: "move-left", Category: "Arrows"},
		{Name: "move-right", Category: "Arrows"},
		{Name: "rotate-cw", Category: "Arrows", Synonyms: []string{"redo", "refresh"}},
		{Name: "clock", Category: "Time", Synonyms: []string{"watch", "schedule"}},
		{Name: "timer", Category: "Time", Synonyms: []string{"stopwatch"}},
		{Name: "mail", Category: "Communication", Synonyms: []string{"envelope", "email"}},
		{Name: "phone-call", Category: "Communication"},
		{Name: "message-circle", Category: "Communication", Synonyms: []string{"chat", "comment"}},
		{Name: "search", Category: "Actions", Synonyms: []string{"find", "lookup"}},
		{Name: "trash-2", Category: "Actions", Synonyms: []string{"delete", "bin"}},
		{Name: "pen-line", Category: "Actions", Synonyms: []string{"edit", "compose"}},
		{Name: "settings", Category: "Actions", Synonyms: []string{"gear", "cog"}},
		{Name: "download-cloud", Category: "Files"},
		{Name: "folder-open", Category: "Files", Synonyms: []string{"directory"}},
		{Name: "file-text", Category: "Files", Synonyms: []string{"document"}},
		{Name: "heart", Category: "Shapes", Synonyms: []string{"love", "favorite"}},
		{Name: "star", Category: "Shapes", Synonyms: []string{"favorite", "rating"}},
	},
}

var (
	catalogDir = flag.String("dir", "catalog", "catalog directory to seed")
	srcFile    = flag.String("src", "", "file of icon names to seed instead of the built-in set")
	library    = flag.String("library", "custom", "library name used with -src")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over non-empty lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}, nil
}

func writeLibrary(dir, library string, entries []entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, library+".json"), data, 0o644)
}

func main() {
	if err := os.MkdirAll(*catalogDir, 0o755); err != nil {
		panic(err)
	}

	if *srcFile != "" {
		source, err := linesFromFile(*srcFile)
		if err != nil {
			panic(err)
		}
		var entries []entry
		for name := range source {
			entries = append(entries, entry{Name: name})
		}
		if err := writeLibrary(*catalogDir, *library, entries); err != nil {
			panic(err)
		}
		slog.Info("seeded library", "library", *library, "icons", len(entries), "dir", *catalogDir)
		return
	}

	for library, entries := range samples {
		if err := writeLibrary(*catalogDir, library, entries); err != nil {
			panic(err)
		}
		slog.Info("seeded library", "library", library, "icons", len(entries), "dir", *catalogDir)
	}
}
