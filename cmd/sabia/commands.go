package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mfogaca/sabia/internal/api"
	"github.com/mfogaca/sabia/internal/archive"
	"github.com/mfogaca/sabia/internal/chat"
	"github.com/mfogaca/sabia/internal/session"
	"github.com/mfogaca/sabia/internal/terminal"
)

func runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := prepareRuntimeEnv()
	if err != nil {
		return err
	}

	stdin := bufio.NewReader(os.Stdin)
	if *email == "" {
		if *email, err = terminal.ReadLine(stdin, "email: "); err != nil {
			return err
		}
	}
	password, err := terminal.ReadPassword("password: ")
	if err != nil {
		return err
	}

	resp, err := env.Client.Login(ctx, api.LoginRequest{Email: *email, Password: password})
	if err != nil {
		env.Display.Errorf("%s", api.ErrorMessage(err))
		os.Exit(1)
	}

	env.Session.Login(resp.Token, session.Identity{
		ID:    resp.User.ID,
		Name:  resp.User.Name,
		Email: resp.User.Email,
	})
	fmt.Printf("logged in as %s <%s>\n", resp.User.Name, resp.User.Email)
	return nil
}

func runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := prepareRuntimeEnv()
	if err != nil {
		return err
	}

	stdin := bufio.NewReader(os.Stdin)
	if *name == "" {
		if *name, err = terminal.ReadLine(stdin, "name: "); err != nil {
			return err
		}
	}
	if *email == "" {
		if *email, err = terminal.ReadLine(stdin, "email: "); err != nil {
			return err
		}
	}
	password, err := terminal.ReadPassword("password: ")
	if err != nil {
		return err
	}

	resp, err := env.Client.Register(ctx, api.RegisterRequest{
		Name:     *name,
		Email:    *email,
		Password: password,
	})
	if err != nil {
		env.Display.Errorf("%s", api.ErrorMessage(err))
		os.Exit(1)
	}

	env.Session.Login(resp.Token, session.Identity{
		ID:    resp.User.ID,
		Name:  resp.User.Name,
		Email: resp.User.Email,
	})
	fmt.Printf("account created, logged in as %s <%s>\n", resp.User.Name, resp.User.Email)
	return nil
}

func runLogout(args []string) error {
	env, err := prepareRuntimeEnv()
	if err != nil {
		return err
	}
	env.Session.Logout()
	fmt.Println("logged out")
	return nil
}

func runWhoami(args []string) error {
	env, err := prepareRuntimeEnv()
	if err != nil {
		return err
	}
	id := env.Session.Identity()
	if id == nil {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s <%s> (id %d)\n", id.Name, id.Email, id.ID)
	return nil
}

func runAsk(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		return fmt.Errorf("usage: sabia ask <question...>")
	}

	env, err := prepareRuntimeEnv()
	if err != nil {
		return err
	}

	manager := chat.NewManager(env.Client, env.Session)
	answer, err := manager.Ask(ctx, question)
	if err != nil {
		env.Display.Errorf("%s", api.ErrorMessage(err))
		os.Exit(1)
	}
	env.Display.Answer(answer.Content, answer.Source, answer.ProcessingTime)
	return nil
}

func runChat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := prepareRuntimeEnv()
	if err != nil {
		return err
	}

	if id := env.Session.Identity(); id != nil {
		env.Display.Infof("chatting as %s (/quit to exit)", id.Name)
	} else {
		env.Display.Infof("chatting anonymously; 'sabia login' to keep history (/quit to exit)")
	}

	manager := chat.NewManager(env.Client, env.Session)
	s := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !s.Scan() {
			break
		}
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		answer, err := manager.Ask(ctx, line)
		if err != nil {
			env.Display.Errorf("%s", api.ErrorMessage(err))
			continue
		}
		env.Display.Answer(answer.Content, answer.Source, answer.ProcessingTime)
		fmt.Println()
	}
	return s.Err()
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	pages := fs.Int("pages", 1, "Number of pages to load")
	all := fs.Bool("all", false, "Load every page")
	search := fs.String("search", "", "Keyword search instead of browsing")
	show := fs.Int("show", 0, "Show one conversation in full")
	del := fs.Int("delete", 0, "Delete one conversation by id")
	clear := fs.Bool("clear", false, "Delete the entire history")
	export := fs.Bool("export", false, "Mirror history into the local archive")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := prepareRuntimeEnv()
	if err != nil {
		return err
	}
	if _, err := env.requireLogin(); err != nil {
		return err
	}

	switch {
	case *show > 0:
		return historyShow(ctx, env, *show)
	case *del > 0:
		return historyDelete(ctx, env, *del)
	case *clear:
		return historyClear(ctx, env)
	case *export:
		return historyExport(ctx, env)
	case *search != "":
		return historySearch(ctx, env, *search)
	default:
		return historyBrowse(ctx, env, *pages, *all)
	}
}

func historyBrowse(ctx context.Context, env *runtimeEnv, pages int, all bool) error {
	if err := env.Engine.LoadPage(ctx, 0); err != nil {
		env.Display.Errorf("%s", env.Engine.View().LastError)
		os.Exit(1)
	}
	for page := 1; ; page++ {
		view := env.Engine.View()
		if !view.HasMore || (!all && page >= pages) {
			break
		}
		if err := env.Engine.LoadPage(ctx, page); err != nil {
			env.Display.Errorf("%s", env.Engine.View().LastError)
			os.Exit(1)
		}
	}

	view := env.Engine.View()
	env.Display.HistoryList(historyRows(view.Items), view.TotalCount, "")
	if view.HasMore {
		env.Display.Infof("more available: 'sabia history -pages %d' or -all", pages+1)
	}
	return nil
}

func historySearch(ctx context.Context, env *runtimeEnv, query string) error {
	if err := env.Engine.Search(ctx, query); err != nil {
		env.Display.Errorf("%s", env.Engine.View().LastError)
		os.Exit(1)
	}
	view := env.Engine.View()
	env.Display.HistoryList(historyRows(view.Items), view.TotalCount, view.ActiveQuery)
	return nil
}

func historyShow(ctx context.Context, env *runtimeEnv, id int) error {
	conv, err := env.Client.Conversation(ctx, id)
	if err != nil {
		env.Display.Errorf("%s", api.ErrorMessage(err))
		os.Exit(1)
	}
	fmt.Printf("#%d · %s · %s\n\n", conv.ID, conv.Status, conv.CreatedAt)
	fmt.Printf("Q: %s\n\n", conv.Question)
	env.Display.Answer(conv.Answer, conv.Source, conv.ProcessingTime)
	return nil
}

func historyDelete(ctx context.Context, env *runtimeEnv, id int) error {
	if err := env.Engine.DeleteItem(ctx, id); err != nil {
		env.Display.Errorf("%s", env.Engine.View().LastError)
		os.Exit(1)
	}
	fmt.Printf("conversation %d deleted\n", id)
	return nil
}

func historyClear(ctx context.Context, env *runtimeEnv) error {
	stdin := bufio.NewReader(os.Stdin)
	answer, err := terminal.ReadLine(stdin, "delete ALL conversations? type 'yes' to confirm: ")
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Println("aborted")
		return nil
	}

	deleted, err := env.Engine.ClearAll(ctx)
	if err != nil {
		env.Display.Errorf("%s", env.Engine.View().LastError)
		os.Exit(1)
	}
	fmt.Printf("deleted %d conversation(s)\n", deleted)
	return nil
}

func historyExport(ctx context.Context, env *runtimeEnv) error {
	arch, err := archive.Open(ctx, env.archivePath())
	if err != nil {
		return err
	}
	defer arch.Close()

	written := 0
	for page := 0; ; page++ {
		if err := env.Engine.LoadPage(ctx, page); err != nil {
			env.Display.Errorf("%s", env.Engine.View().LastError)
			os.Exit(1)
		}
		view := env.Engine.View()

		// Pages accumulate in the view; archive only the newly loaded
		// tail so each page is written once.
		start := view.CurrentOffset
		if start > len(view.Items) {
			start = len(view.Items)
		}
		n, err := arch.Save(ctx, archiveRows(view.Items[start:]))
		if err != nil {
			return err
		}
		written += n
		if !view.HasMore {
			break
		}
	}

	userID, _ := env.Session.UserID()
	total, err := arch.Count(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Printf("archived %d conversation(s), %d in local archive (%s)\n",
		written, total, env.archivePath())
	return nil
}

func runStats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := prepareRuntimeEnv()
	if err != nil {
		return err
	}
	id, err := env.requireLogin()
	if err != nil {
		return err
	}

	stats, err := env.Client.Statistics(ctx, id.ID)
	if err != nil {
		env.Display.Errorf("%s", api.ErrorMessage(err))
		os.Exit(1)
	}

	rows := []terminal.StatsRow{
		{Label: "questions asked", Value: fmt.Sprintf("%d", stats.TotalQuestions)},
		{Label: "average time", Value: fmt.Sprintf("%.2fs", stats.AvgTime)},
		{Label: "success rate", Value: fmt.Sprintf("%.1f%%", stats.SuccessRate)},
		{Label: "successes / errors", Value: fmt.Sprintf("%d / %d", stats.Successes, stats.Errors)},
		{Label: "cache hits", Value: fmt.Sprintf("%d (%.1f%%)", stats.CacheHits, stats.CacheRate)},
	}
	var sources []terminal.StatsRow
	for _, s := range stats.TopSources {
		sources = append(sources, terminal.StatsRow{
			Label: s.Source,
			Value: fmt.Sprintf("%d", s.Count),
		})
	}
	env.Display.Stats(rows, sources)
	return nil
}

func historyRows(items []api.ConversationSummary) []terminal.HistoryRow {
	rows := make([]terminal.HistoryRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, terminal.HistoryRow{
			ID:        item.ID,
			Question:  item.Question,
			Preview:   item.AnswerPreview,
			Status:    item.Status,
			CreatedAt: item.CreatedAt,
		})
	}
	return rows
}

func archiveRows(items []api.ConversationSummary) []archive.Summary {
	rows := make([]archive.Summary, 0, len(items))
	for _, item := range items {
		rows = append(rows, archive.Summary{
			ID:             item.ID,
			UserID:         item.UserID,
			Question:       item.Question,
			AnswerPreview:  item.AnswerPreview,
			Source:         item.Source,
			ProcessingTime: item.ProcessingTime,
			Status:         item.Status,
			CreatedAt:      item.CreatedAt,
		})
	}
	return rows
}
