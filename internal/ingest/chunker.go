package ingest

import "strings"

const (
	chunkWords   = 500 // Words per chunk
	overlapWords = 100 // Words shared with the previous chunk
)

// Chunk is one indexable slice of a document.
type Chunk struct {
	Index int
	Text  string
}

// SplitWords splits text into overlapping word-window chunks. Each chunk holds
// up to chunkWords words and repeats the last overlapWords words of its
// predecessor so sentences cut at a boundary stay retrievable.
func SplitWords(text string) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []Chunk
	step := chunkWords - overlapWords

	for start := 0; start < len(words); start += step {
		end := start + chunkWords
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  strings.Join(words[start:end], " "),
		})

		if end == len(words) {
			break
		}
	}

	return chunks
}
