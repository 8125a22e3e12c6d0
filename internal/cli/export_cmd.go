// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - export and transcripts.

package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jeranaias/showcase-chat/internal/export"
	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/storage"
	"github.com/jeranaias/showcase-chat/internal/ui/styles"
	"github.com/jeranaias/showcase-chat/internal/util"
)

// =============================================================================
// EXPORT
// =============================================================================

type exportResult struct {
	Path         string   `json:"path,omitempty"`
	TranscriptID string   `json:"transcript_id"`
	ChatID       model.ID `json:"chat_id"`
	Messages     int      `json:"messages"`
}

// HandleExport snapshots a conversation into the transcript store and
// writes it in the requested format, to a directory or to stdout ("-").
func (a *App) HandleExport(ctx context.Context) error {
	opts := export.DefaultOptions()
	exp, err := export.ForFormat(a.Args.Format, opts)
	if err != nil {
		return &ValidationError{Field: "format", Value: a.Args.Format, Reason: "must be one of " + strings.Join(export.Formats, ", ")}
	}

	client, err := a.Client()
	if err != nil {
		return err
	}
	id := model.ID(a.Args.ChatID)
	msgs, err := client.GetMessages(ctx, id)
	if err != nil {
		return requestFailed("export", "Failed to load messages", err)
	}
	if len(msgs) == 0 {
		return &CommandError{Command: "export", Reason: fmt.Sprintf("Chat %s has no messages to export.", id)}
	}

	title := ""
	if convs, err := client.ListConversations(ctx); err != nil {
		log.Printf("[export] title lookup failed: %v", err)
	} else if i := model.IndexOf(convs, id); i >= 0 {
		title = convs[i].Title
	}

	t := &storage.Transcript{ConversationID: id, Title: title, Messages: model.SortByID(msgs)}
	store, err := a.transcripts()
	if err != nil {
		return err
	}
	if _, err := store.Save(t); err != nil {
		return &CommandError{Command: "export", Action: "save transcript", Err: err}
	}

	res := exportResult{TranscriptID: t.ID, ChatID: id, Messages: len(t.Messages)}

	if a.Args.Out == "-" {
		data, err := exp.Export(t)
		if err != nil {
			return &CommandError{Command: "export", Action: "render transcript", Err: err}
		}
		_, err = a.Stdout.Write(data)
		return err
	}

	if a.Args.Out != "" {
		opts.OutputDir = a.Args.Out
	}
	res.Path, err = export.ToFile(t, exp, opts)
	if err != nil {
		return &CommandError{Command: "export", Action: "write file", Err: err}
	}

	if a.Args.JSON {
		return a.printJSON("export", res)
	}
	a.ok("Exported chat %s to %s", id, res.Path)
	a.hint("Saved transcript %s", t.ID)
	return nil
}

func (a *App) transcripts() (*storage.TranscriptStore, error) {
	store, err := storage.NewTranscriptStore(a.Config.Storage.TranscriptsDir)
	if err != nil {
		return nil, &CommandError{Command: "transcripts", Action: "open transcript store", Err: err}
	}
	return store, nil
}

// =============================================================================
// TRANSCRIPTS
// =============================================================================

// HandleTranscripts lists, shows, searches and deletes local transcripts.
// It never touches the network.
func (a *App) HandleTranscripts(ctx context.Context) error {
	store, err := a.transcripts()
	if err != nil {
		return err
	}

	switch a.Args.Subcommand {
	case "", "list", "ls":
		metas, err := store.List()
		if err != nil {
			return err
		}
		return a.printTranscriptList(metas)

	case "search", "find":
		query := strings.Join(a.Args.Positional, " ")
		metas, err := store.Search(query)
		if err != nil {
			return err
		}
		return a.printTranscriptList(metas)

	case "show", "cat":
		t, err := a.loadTranscript(store)
		if err != nil {
			return err
		}
		if a.Args.JSON {
			return a.printJSON("transcripts", t)
		}
		exp, err := export.ForFormat(a.Args.Format, &export.Options{IncludeMetadata: false})
		if err != nil {
			return &ValidationError{Field: "format", Value: a.Args.Format, Reason: "must be one of " + strings.Join(export.Formats, ", ")}
		}
		data, err := exp.Export(t)
		if err != nil {
			return err
		}
		out := string(data)
		if _, isMarkdown := exp.(*export.MarkdownExporter); isMarkdown && a.Pretty && a.Config.UI.RenderMarkdown {
			out = styles.RenderMarkdown(out, a.wrapWidth()) + "\n"
		}
		fmt.Fprint(a.Stdout, out)
		return nil

	case "delete", "rm":
		t, err := a.loadTranscript(store)
		if err != nil {
			return err
		}
		confirmed, err := RequireConfirmation("delete this transcript", a.confirmOptions(
			[2]string{"Transcript", t.ID},
			[2]string{"Title", t.DisplayTitle()},
		))
		if err != nil {
			return err
		}
		if !confirmed {
			a.hint("Cancelled.")
			return nil
		}
		if err := store.Delete(t.ID); err != nil {
			return err
		}
		if a.Args.JSON {
			return a.printJSON("transcripts", map[string]string{"deleted": t.ID})
		}
		a.ok("Deleted transcript %s", t.ID)
		return nil

	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   a.Args.Subcommand,
			Reason:  "must be list, show, search or delete",
			Example: "showcase-chat transcripts show <id>",
		}
	}
}

func (a *App) loadTranscript(store *storage.TranscriptStore) (*storage.Transcript, error) {
	id := ""
	if len(a.Args.Positional) > 0 {
		id = a.Args.Positional[0]
	}
	if id == "" {
		return nil, &ValidationError{Field: "transcript id", Reason: "is required", Example: "showcase-chat transcripts show <id>"}
	}
	t, err := store.Load(id)
	if errors.Is(err, storage.ErrTranscriptNotFound) {
		return nil, &NotFoundError{Resource: "transcript", ID: id}
	}
	return t, err
}

func (a *App) printTranscriptList(metas []storage.TranscriptMeta) error {
	if a.Args.JSON {
		return a.printJSON("transcripts", metas)
	}
	if len(metas) == 0 {
		a.hint("No transcripts. Save one with: showcase-chat export <chat-id>")
		return nil
	}
	if !a.Args.Quiet {
		fmt.Fprintf(a.Stdout, "%s  %s  %s  %s\n",
			TitleStyle.Render(util.PadWidth("ID", 36)),
			TitleStyle.Render(util.PadWidth("SAVED", 16)),
			TitleStyle.Render(util.PadWidth("CHAT", 6)),
			TitleStyle.Render("TITLE"))
	}
	titleWidth := max(a.Width-36-16-6-6, 10)
	for _, m := range metas {
		fmt.Fprintf(a.Stdout, "%s  %s  %s  %s\n",
			util.PadWidth(m.ID, 36),
			m.SavedAt.Local().Format("2006-01-02 15:04"),
			util.PadWidth(m.ConversationID.String(), 6),
			util.TruncateWidth(m.Title, titleWidth))
	}
	return nil
}
