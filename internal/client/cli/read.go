package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dkrasnov/flashread/internal/client/recovery"
	"github.com/dkrasnov/flashread/internal/reader"
	"github.com/dkrasnov/flashread/internal/textparse"
)

// saveDebounce is the coalescing window for progress persistence while
// reading. The final position is always flushed on session end.
const saveDebounce = 2 * time.Second

// read runs one reading session: pick a document, replay a crash snapshot
// when fresh, then drive the presentation engine from line commands.
func (a *App) read(ctx context.Context) error {
	doc, err := a.pickDocument(ctx, "Enter the number of the document to read")
	if err != nil || doc == nil {
		return err
	}

	if doc.IsGhost {
		fmt.Printf("%q has no text on this device yet. Re-add the original file or paste the text to resume.\n", doc.Title)
		return nil
	}

	words := textparse.Words(doc.Content)
	if len(words) == 0 {
		fmt.Println("The document is empty")
		return nil
	}

	start := doc.BookmarkIndex
	if snap, err := a.crashBuffer.Consume(); err == nil && snap != nil && snap.DocumentID == doc.ID && snap.Index > start {
		fmt.Printf("Recovered position from an interrupted session: word %d\n", snap.Index)
		start = snap.Index
	}
	if start >= len(words) {
		start = 0
	}

	saver := recovery.NewSaver(saveDebounce, func(docID string, index int) {
		sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = a.store.UpdateProgress(sctx, docID, index)
		_ = a.crashBuffer.Write(docID, index, len(words))
	})

	eng := reader.New(words, reader.Options{
		WPM:              a.config.WPM,
		PunctuationPause: a.config.PunctuationPause,
		Callbacks: reader.Callbacks{
			OnWordChange: func(word string, index int) {
				fmt.Printf("\r%-40s", word)
				saver.Queue(doc.ID, index)
			},
			OnProgress: nil,
			OnComplete: func() {
				fmt.Println("\nFinished!")
			},
		},
	})
	defer eng.Destroy()

	a.statsService.StartSession(doc.ID, start)
	eng.JumpToWord(start)
	eng.Play()

	fmt.Println("\nReading. Commands: p pause, r resume, j <n> jump, +/- speed, t time left, q quit")
	a.readLoop(eng)

	eng.Pause()
	snap := eng.State()

	saver.Stop()
	if err := a.store.UpdateProgress(ctx, doc.ID, snap.Index); err != nil {
		fmt.Println("Warning: could not save progress:", err)
	}
	_ = a.crashBuffer.Clear()

	completed := snap.Index >= snap.Total
	if err := a.statsService.EndSession(ctx, snap.Index, snap.WPM, completed); err != nil {
		fmt.Println("Warning: could not record session:", err)
	}

	if a.isLoggedIn() {
		doc.BookmarkIndex = snap.Index
		doc.LastReadAt = time.Now().UTC()
		if err := a.syncService.SyncDocument(ctx, doc); err != nil {
			fmt.Println("Warning: could not push progress:", err)
		}
	}

	fmt.Printf("Stopped at word %d of %d\n", snap.Index, snap.Total)
	return nil
}

// readLoop dispatches line commands to the engine until quit or EOF.
func (a *App) readLoop(eng *reader.Engine) {
	for {
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "p", "pause":
			eng.Pause()
			fmt.Println("Paused at", eng.TimeRemaining(), "remaining")
		case "r", "resume", "play":
			eng.Play()
		case "j", "jump":
			if len(parts) < 2 {
				fmt.Println("Usage: j <word number>")
				continue
			}
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("Usage: j <word number>")
				continue
			}
			eng.JumpToWord(n)
		case "b", "back":
			eng.Skip(-10)
		case "+":
			eng.SetSpeed(eng.State().WPM + 50)
			fmt.Println("Speed:", eng.State().WPM, "wpm")
		case "-":
			eng.SetSpeed(eng.State().WPM - 50)
			fmt.Println("Speed:", eng.State().WPM, "wpm")
		case "t", "time":
			fmt.Println("Time remaining:", eng.TimeRemaining())
		case "q", "quit", "exit":
			return
		default:
			fmt.Fprintln(os.Stdout, "Unknown command:", parts[0])
		}

		if eng.State().State == reader.StateCompleted {
			return
		}
	}
}
