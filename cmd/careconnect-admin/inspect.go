package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/adapters/authroles"
	redisadapter "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/adapters/redis"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/bootstrap"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/data"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/access"
	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/service"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/util"
	"github.com/redis/go-redis/v9"
)

const defaultInspectTimeout = 30 * time.Second

type resolveRoleOptions struct {
	Email   string
	Timeout time.Duration
}

type favoritesOptions struct {
	UserID  string
	Toggle  string
	Timeout time.Duration
}

type sessionInspectOptions struct {
	SessionID string
	Timeout   time.Duration
}

func runResolveRole(cmdCtx *commandContext, args []string) error {
	opts, err := parseResolveRoleFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		resolver := newResolver(db, cmdCtx)
		res := resolver.Resolve(ctx, &domainauth.Identity{Email: opts.Email})
		return printResolution(cmdCtx.Out, opts.Email, res)
	})
}

func newResolver(db *sql.DB, cmdCtx *commandContext) *service.RoleResolver {
	return service.NewRoleResolver(service.RoleResolverOptions{
		AllowList:  authroles.DefaultAllowList(),
		Profiles:   data.NewProfileRepo(db),
		Candidates: data.NewCandidateRepo(db),
		Logger:     cmdCtx.Logger,
	})
}

func printResolution(w io.Writer, email string, res domainauth.Resolution) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	decision := access.RouteDashboard(false, res.Role)
	rows := [][2]string{
		{"email", domainauth.NormalizeEmail(email)},
		{"role", roleLabel(res.Role)},
		{"source", string(res.Profile.Source)},
		{"profile id", res.Profile.ID},
		{"full name", res.Profile.FullName},
		{"user role", res.Profile.UserRole},
		{"status", res.Profile.Status},
		{"landing", decision.Location},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		if err := writef(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func roleLabel(role domainauth.Role) string {
	if role == domainauth.RoleNone {
		return "none"
	}
	return string(role)
}

func runFavorites(cmdCtx *commandContext, args []string) error {
	opts, err := parseFavoritesFlags(args)
	if err != nil {
		return err
	}

	return withRedis(cmdCtx, opts.Timeout, func(ctx context.Context, client redis.UniversalClient) error {
		favs := service.NewFavoritesService(service.FavoritesServiceOptions{
			Store:  redisadapter.NewKVStore(client, cmdCtx.Config.Redis.MirrorTTL),
			Logger: cmdCtx.Logger,
		})
		if opts.Toggle != "" {
			ids, added := favs.Toggle(ctx, opts.UserID, opts.Toggle)
			verb := "removed"
			if added {
				verb = "added"
			}
			if werr := writef(cmdCtx.Out, "%s %s\n", verb, opts.Toggle); werr != nil {
				return werr
			}
			return printFavorites(cmdCtx.Out, opts.UserID, ids)
		}
		return printFavorites(cmdCtx.Out, opts.UserID, favs.Load(ctx, opts.UserID))
	})
}

func printFavorites(w io.Writer, userID string, ids []string) error {
	if len(ids) == 0 {
		return writef(w, "%s has no favorites\n", userID)
	}
	if err := writef(w, "%s has %d favorite(s):\n", userID, len(ids)); err != nil {
		return err
	}
	for _, id := range ids {
		if err := writef(w, "  %s\n", id); err != nil {
			return err
		}
	}
	return nil
}

// sessionReport is everything session-inspect prints for one session id.
type sessionReport struct {
	Session     domainauth.Session
	SessionTTL  time.Duration
	MirrorFound bool
	MirrorTTL   time.Duration
	Now         time.Time
}

func runSessionInspect(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionInspectFlags(args)
	if err != nil {
		return err
	}

	return withRedis(cmdCtx, opts.Timeout, func(ctx context.Context, client redis.UniversalClient) error {
		prefix := cmdCtx.Config.Auth.SessionPrefix
		store := redisadapter.NewSessionStore(client, prefix)
		sess, getErr := store.Get(ctx, opts.SessionID)
		if errors.Is(getErr, ports.ErrSessionNotFound) {
			return writef(cmdCtx.Out, "session %s not found\n", opts.SessionID)
		}
		if getErr != nil {
			return fmt.Errorf("load session: %w", getErr)
		}

		report := sessionReport{Session: sess, Now: time.Now()}
		if report.SessionTTL, err = client.TTL(ctx, prefix+opts.SessionID).Result(); err != nil {
			return fmt.Errorf("session ttl: %w", err)
		}

		mirror := redisadapter.NewKVStore(client, cmdCtx.Config.Redis.MirrorTTL)
		mirrorKey := service.TokenMirrorKey(opts.SessionID)
		if _, report.MirrorFound, err = mirror.Get(ctx, mirrorKey); err != nil {
			return fmt.Errorf("read token mirror: %w", err)
		}
		if report.MirrorFound {
			if report.MirrorTTL, err = client.TTL(ctx, mirrorKey).Result(); err != nil {
				return fmt.Errorf("mirror ttl: %w", err)
			}
		}
		return printSession(cmdCtx.Out, report)
	})
}

func printSession(w io.Writer, r sessionReport) error {
	s := r.Session
	id := s.Identity()
	mirror := "absent"
	if r.MirrorFound {
		mirror = "present, " + util.FormatTTL(r.MirrorTTL)
	}
	token := "none"
	if s.AccessToken != "" {
		token = "set"
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"session", s.ID},
		{"user id", s.UserID},
		{"name", id.DisplayName()},
		{"email", s.Email},
		{"cached role", roleLabel(s.Role)},
		{"landing", access.AreaFor(s.Role)},
		{"access token", token},
		{"expires in", util.FormatRemaining(s.ExpiresAt.Sub(r.Now))},
		{"store ttl", util.FormatTTL(r.SessionTTL)},
		{"token mirror", mirror},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		if err := writef(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func withRedis(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, redis.UniversalClient) error,
) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, timeout)
	defer cancel()

	client, err := bootstrap.ConnectRedis(ctx, cmdCtx.Config.Redis, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()

	return f(ctx, client)
}

func parseResolveRoleFlags(args []string) (resolveRoleOptions, error) {
	fs := flag.NewFlagSet("resolve-role", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts resolveRoleOptions
	fs.StringVar(&opts.Email, "email", "", "Email address to resolve (required)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultInspectTimeout, "Maximum duration for the lookup")

	if err := fs.Parse(args); err != nil {
		return resolveRoleOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return resolveRoleOptions{}, errors.New("--email is required")
	}
	if opts.Timeout <= 0 {
		return resolveRoleOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseFavoritesFlags(args []string) (favoritesOptions, error) {
	fs := flag.NewFlagSet("favorites", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts favoritesOptions
	fs.StringVar(&opts.UserID, "user", "", "User id whose favorites to show (required)")
	fs.StringVar(&opts.Toggle, "toggle", "", "Caregiver id to add or remove before listing")
	fs.DurationVar(&opts.Timeout, "timeout", defaultInspectTimeout, "Maximum duration for the operation")

	if err := fs.Parse(args); err != nil {
		return favoritesOptions{}, err
	}
	opts.UserID = strings.TrimSpace(opts.UserID)
	opts.Toggle = strings.TrimSpace(opts.Toggle)
	if opts.UserID == "" {
		return favoritesOptions{}, errors.New("--user is required")
	}
	if opts.Timeout <= 0 {
		return favoritesOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseSessionInspectFlags(args []string) (sessionInspectOptions, error) {
	fs := flag.NewFlagSet("session-inspect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts sessionInspectOptions
	fs.StringVar(&opts.SessionID, "id", "", "Session id to inspect (required)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultInspectTimeout, "Maximum duration for the lookup")

	if err := fs.Parse(args); err != nil {
		return sessionInspectOptions{}, err
	}
	opts.SessionID = strings.TrimSpace(opts.SessionID)
	if opts.SessionID == "" {
		return sessionInspectOptions{}, errors.New("--id is required")
	}
	if opts.Timeout <= 0 {
		return sessionInspectOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}
