package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/permission"
	"github.com/Rrens/meeting-buddy/internal/service"
)

func (a *app) user() (domain.User, error) {
	state := a.session.Current()
	if !state.IsAuthenticated || state.User == nil {
		return domain.User{}, fmt.Errorf("%w: run hubctl login first", domain.ErrUnauthenticated)
	}
	return *state.User, nil
}

func (a *app) currentHub() (domain.Hub, error) {
	if _, err := a.user(); err != nil {
		return domain.Hub{}, err
	}
	hub, ok := a.store.CurrentHub()
	if !ok {
		return domain.Hub{}, fmt.Errorf("no hub selected: run hubctl hub select <id>")
	}
	return hub, nil
}

func memberID(hub domain.Hub, email string) (uuid.UUID, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, m := range hub.Members {
		if strings.ToLower(m.Email) == email {
			return m.UserID, nil
		}
	}
	return uuid.Nil, fmt.Errorf("%w: %s is not a member of %s", domain.ErrNotFound, email, hub.Name)
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func newRegisterCmd(a *app) *cobra.Command {
	var input domain.UserCreate
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := a.session.Register(cmd.Context(), input)
			if err != nil {
				return err
			}
			if err := a.store.Load(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s <%s>\n", state.User.Name, state.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "display name")
	cmd.Flags().StringVar(&input.Email, "email", "", "email address")
	cmd.Flags().StringVar(&input.Password, "password", "", "password (at least 6 characters)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var input domain.UserLogin
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := a.session.Login(cmd.Context(), input)
			if err != nil {
				return err
			}
			if err := a.store.Load(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", state.User.Name, state.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Email, "email", "", "email address")
	cmd.Flags().StringVar(&input.Password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the saved session",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.user()
			if err != nil {
				return err
			}
			return printJSON(cmd, user)
		},
	}
}

func newHubCmd(a *app) *cobra.Command {
	hub := &cobra.Command{Use: "hub", Short: "Create, list and select hubs"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your hubs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.user()
			if err != nil {
				return err
			}
			current, _ := a.store.CurrentHub()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tNAME\tTYPE\tROLE\tMEMBERS")
			for _, h := range a.store.UserHubs(user.ID) {
				mark := ""
				if h.ID == current.ID {
					mark = "*"
				}
				m, _ := h.Member(user.ID)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", mark, h.ID, h.Name, h.Type, m.Role, len(h.Members))
			}
			return tw.Flush()
		},
	}

	var (
		req     service.HubCreateRequest
		members []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a hub and select it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.user(); err != nil {
				return err
			}
			for _, m := range members {
				email, role, ok := strings.Cut(m, "=")
				if !ok {
					return fmt.Errorf("member %q must be email=role", m)
				}
				req.Members = append(req.Members, service.MemberInvite{Email: email, Role: role})
			}

			created, err := a.hubs.CreateHub(cmd.Context(), a.store, req)
			if err != nil {
				return err
			}
			if err := a.store.SelectHub(cmd.Context(), &created.ID); err != nil {
				return err
			}
			return printJSON(cmd, created)
		},
	}
	create.Flags().StringVar(&req.Name, "name", "", "hub name")
	create.Flags().StringVar((*string)(&req.Type), "type", string(domain.HubTypeTeam), "corporate, startup, nonprofit or team")
	create.Flags().StringVar((*string)(&req.CreatorRole), "role", string(domain.RoleCEO), "your role in the hub")
	create.Flags().StringVar(&req.Description, "description", "", "hub description")
	create.Flags().StringArrayVar(&members, "member", nil, "initial member as email=role (repeatable)")
	_ = create.MarkFlagRequired("name")

	sel := &cobra.Command{
		Use:   "select <hub-id>",
		Short: "Make a hub the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.store.SelectHub(cmd.Context(), &id); err != nil {
				return err
			}
			h, _ := a.store.CurrentHub()
			fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", h.Name)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current hub and your capabilities in it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.currentHub()
			if err != nil {
				return err
			}
			user, _ := a.user()
			m, _ := h.Member(user.ID)
			return printJSON(cmd, map[string]any{
				"hub":          h,
				"role":         m.Role,
				"capabilities": permission.Resolve(m.Role),
				"addableRoles": permission.AddableRoles(m.Role),
			})
		},
	}

	hub.AddCommand(list, create, sel, show)
	return hub
}

func newMemberCmd(a *app) *cobra.Command {
	member := &cobra.Command{Use: "member", Short: "Manage hub members"}

	var role string
	add := &cobra.Command{
		Use:   "add <email>",
		Short: "Add a registered user to the current hub",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.currentHub()
			if err != nil {
				return err
			}
			m, err := a.hubs.AddMember(cmd.Context(), a.store, h.ID, service.MemberInvite{Email: args[0], Role: role})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s as %s\n", m.Name, m.Role)
			return nil
		},
	}
	add.Flags().StringVar(&role, "role", "", "Manager, Team Leader or Employee")
	_ = add.MarkFlagRequired("role")

	member.AddCommand(add)
	return member
}

func newTeamCmd(a *app) *cobra.Command {
	team := &cobra.Command{Use: "team", Short: "Manage teams"}

	var (
		input     domain.TeamCreate
		leader    string
		assistant string
		members   []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a team and its channel in the current hub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.currentHub()
			if err != nil {
				return err
			}
			if input.LeaderID, err = memberID(h, leader); err != nil {
				return err
			}
			if input.AssistantID, err = memberID(h, assistant); err != nil {
				return err
			}
			for _, email := range members {
				id, err := memberID(h, email)
				if err != nil {
					return err
				}
				input.Members = append(input.Members, id)
			}

			created, err := a.store.CreateTeam(cmd.Context(), h.ID, input)
			if err != nil {
				return err
			}
			return printJSON(cmd, created)
		},
	}
	create.Flags().StringVar(&input.Name, "name", "", "team name")
	create.Flags().StringVar(&input.Description, "description", "", "team description")
	create.Flags().StringVar(&input.Department, "department", "", "department")
	create.Flags().StringVar(&leader, "leader", "", "leader email (a Manager)")
	create.Flags().StringVar(&assistant, "assistant", "", "assistant leader email (a Manager)")
	create.Flags().StringSliceVar(&members, "member", nil, "member emails (Employees)")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("leader")
	_ = create.MarkFlagRequired("assistant")

	team.AddCommand(create)
	return team
}

func newChannelCmd(a *app) *cobra.Command {
	channel := &cobra.Command{Use: "channel", Short: "Read and post channel messages"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the channels you can see in the current hub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.currentHub()
			if err != nil {
				return err
			}
			user, _ := a.user()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tMESSAGES\tCAN POST")
			for _, c := range h.Channels {
				if !permission.CanViewChannel(&h, c, user.ID) {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\n", c.ID, c.Name, c.Type, len(c.Messages), permission.CanPostInChannel(&h, c, user.ID))
			}
			return tw.Flush()
		},
	}

	read := &cobra.Command{
		Use:   "read <channel-id>",
		Short: "Print a channel's messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.currentHub()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, _ := a.user()
			c, ok := h.Channel(id)
			if !ok {
				return fmt.Errorf("%w: channel %s", domain.ErrNotFound, id)
			}
			if !permission.CanViewChannel(&h, c, user.ID) {
				return fmt.Errorf("%w: you cannot view %s", domain.ErrForbidden, c.Name)
			}
			for _, m := range c.Messages {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", m.Timestamp.Local().Format("Jan 2 15:04"), m.UserName, m.Content)
			}
			return nil
		},
	}

	post := &cobra.Command{
		Use:   "post <channel-id> <message>...",
		Short: "Post a message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.currentHub()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, err = a.store.PostMessage(cmd.Context(), h.ID, id, strings.Join(args[1:], " "))
			return err
		},
	}

	channel.AddCommand(list, read, post)
	return channel
}

func newMeetingCmd(a *app) *cobra.Command {
	mtg := &cobra.Command{Use: "meeting", Short: "Schedule and run meetings"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List meetings of the current hub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.currentHub()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tWHEN\tMIN\tSTATUS\tLINK")
			for _, m := range a.store.HubMeetings(h.ID) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", m.ID, m.Title, m.ScheduledFor.Local().Format("Jan 2 15:04"), m.Duration, m.Status, m.MeetingLink)
			}
			return tw.Flush()
		},
	}

	var (
		input        domain.MeetingCreate
		at           string
		participants []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Schedule a meeting in the current hub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.currentHub()
			if err != nil {
				return err
			}
			user, _ := a.user()

			input.HubID = h.ID
			input.ScheduledFor = time.Now().Add(time.Hour)
			if at != "" {
				if input.ScheduledFor, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("--at must be RFC3339: %w", err)
				}
			}
			input.Participants = []uuid.UUID{user.ID}
			for _, email := range participants {
				id, err := memberID(h, email)
				if err != nil {
					return err
				}
				input.Participants = append(input.Participants, id)
			}

			m, err := a.store.AddMeeting(cmd.Context(), input)
			if err != nil {
				return err
			}
			return printJSON(cmd, m)
		},
	}
	create.Flags().StringVar(&input.Title, "title", "", "meeting title")
	create.Flags().StringArrayVar(&input.Agenda, "agenda", nil, "agenda item (repeatable)")
	create.Flags().StringSliceVar(&participants, "participant", nil, "participant emails; you are always included")
	create.Flags().StringVar(&at, "at", "", "start time, RFC3339 (default in one hour)")
	create.Flags().IntVar(&input.Duration, "duration", 30, "duration in minutes")
	_ = create.MarkFlagRequired("title")

	show := &cobra.Command{
		Use:   "show <meeting-id>",
		Short: "Show a meeting with its attendance log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, ok := a.store.Meeting(id)
			if !ok {
				return fmt.Errorf("%w: meeting %s", domain.ErrNotFound, id)
			}
			return printJSON(cmd, m)
		},
	}

	join := &cobra.Command{
		Use:   "join <meeting-id>",
		Short: "Record that you joined a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := a.store.JoinMeeting(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Joined %s: %s\n", m.Title, m.MeetingLink)
			return nil
		},
	}

	leave := &cobra.Command{
		Use:   "leave <meeting-id>",
		Short: "Record that you left a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := a.store.LeaveMeeting(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Left %s\n", m.Title)
			return nil
		},
	}

	var notes, summary string
	summarize := &cobra.Command{
		Use:   "summarize <meeting-id>",
		Short: "Complete a meeting with a written or generated summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.user()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var m domain.Meeting
			if strings.TrimSpace(summary) != "" {
				m, err = a.store.CompleteMeeting(cmd.Context(), id, summary)
			} else {
				m, err = a.assistant.SummarizeMeeting(cmd.Context(), a.store, user, id, notes)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.Summary)
			return nil
		},
	}
	summarize.Flags().StringVar(&notes, "notes", "", "notes for the assistant")
	summarize.Flags().StringVar(&summary, "summary", "", "use this summary instead of generating one")

	mtg.AddCommand(list, create, show, join, leave, summarize)
	return mtg
}

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>...",
		Short: "Ask the assistant a question about the current hub",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.currentHub()
			if err != nil {
				return err
			}
			user, _ := a.user()

			entry, err := a.assistant.Ask(cmd.Context(), a.store, user, h.ID, domain.ChatbotQuery{Query: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), entry.Response)
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the assistant history of the current hub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.currentHub()
			if err != nil {
				return err
			}
			for _, e := range a.store.ChatbotHistory(h.ID) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s] %s\n    %s\n", e.Timestamp.Local().Format("Jan 2 15:04"), e.Type, e.Title, e.Response)
			}
			return nil
		},
	}
}
