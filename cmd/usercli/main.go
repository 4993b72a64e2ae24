// Package main provides the user CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joho/godotenv"

	"github.com/osa030/surabhi/internal/api/playerv1"
	"github.com/osa030/surabhi/internal/api/playerv1/playerv1connect"
)

var (
	app    = kingpin.New("surabhi", "surabhi music player client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()

	// status command
	statusCmd = app.Command("status", "Show what is playing").Default()

	// play command
	playCmd     = app.Command("play", "Play a track from a listing, queueing the whole listing")
	playListing = playCmd.Arg("listing", "Listing (trending, new-releases, search-results, favorites, local-library)").Required().String()
	playTrackID = playCmd.Arg("track-id", "Track ID").Required().String()

	// play-track command
	playTrackCmd = app.Command("play-track", "Play a track, keeping the queue when it contains it")
	playTrackArg = playTrackCmd.Arg("track-id", "Track ID").Required().String()

	// transport commands
	toggleCmd   = app.Command("toggle", "Pause or resume").Alias("pause")
	nextCmd     = app.Command("next", "Skip to the next track")
	previousCmd = app.Command("previous", "Restart the track or go back").Alias("prev")
	seekCmd     = app.Command("seek", "Seek within the current track")
	seekTo      = seekCmd.Arg("position", "Position (e.g. 45s, 1m30s)").Required().Duration()
	volumeCmd   = app.Command("volume", "Set the volume")
	volumeLevel = volumeCmd.Arg("level", "Volume between 0 and 1").Required().Float64()
	shuffleCmd  = app.Command("shuffle", "Toggle shuffle")
	repeatCmd   = app.Command("repeat", "Cycle repeat mode (off, all, one)")

	// favorite command
	favoriteCmd     = app.Command("favorite", "Toggle a track in the favorites").Alias("fav")
	favoriteTrackID = favoriteCmd.Arg("track-id", "Track ID").Required().String()

	// listing commands
	listingCmd  = app.Command("listing", "Show a listing")
	listingKind = listingCmd.Arg("listing", "Listing name").Required().String()
	listingsCmd = app.Command("listings", "Show every listing")

	// search command
	searchCmd   = app.Command("search", "Search the catalog")
	searchQuery = searchCmd.Arg("query", "Search terms").Required().Strings()
	searchLimit = searchCmd.Flag("limit", "Maximum results").Default("0").Int32()

	// subscribe command
	subscribeCmd = app.Command("subscribe", "Follow player notifications")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := playerv1connect.NewPlayerServiceClient(
		http.DefaultClient,
		*server,
	)

	ctx := context.Background()

	var err error
	switch command {
	case statusCmd.FullCommand():
		err = printResponse(client.GetStatus(ctx, connect.NewRequest(&playerv1.Empty{})))
	case playCmd.FullCommand():
		err = printResponse(client.Play(ctx, connect.NewRequest(&playerv1.PlayRequest{
			Listing: *playListing,
			TrackID: *playTrackID,
		})))
	case playTrackCmd.FullCommand():
		err = printResponse(client.PlayTrack(ctx, connect.NewRequest(&playerv1.PlayTrackRequest{TrackID: *playTrackArg})))
	case toggleCmd.FullCommand():
		err = printResponse(client.TogglePlay(ctx, connect.NewRequest(&playerv1.Empty{})))
	case nextCmd.FullCommand():
		err = printResponse(client.Next(ctx, connect.NewRequest(&playerv1.Empty{})))
	case previousCmd.FullCommand():
		err = printResponse(client.Previous(ctx, connect.NewRequest(&playerv1.Empty{})))
	case seekCmd.FullCommand():
		err = printResponse(client.Seek(ctx, connect.NewRequest(&playerv1.SeekRequest{PositionMs: seekTo.Milliseconds()})))
	case volumeCmd.FullCommand():
		err = printResponse(client.SetVolume(ctx, connect.NewRequest(&playerv1.SetVolumeRequest{Volume: *volumeLevel})))
	case shuffleCmd.FullCommand():
		err = toggleShuffle(ctx, client)
	case repeatCmd.FullCommand():
		err = toggleRepeat(ctx, client)
	case favoriteCmd.FullCommand():
		err = toggleFavorite(ctx, client, *favoriteTrackID)
	case listingCmd.FullCommand():
		err = showListing(ctx, client, *listingKind)
	case listingsCmd.FullCommand():
		err = showListings(ctx, client)
	case searchCmd.FullCommand():
		err = search(ctx, client, strings.Join(*searchQuery, " "), *searchLimit)
	case subscribeCmd.FullCommand():
		err = subscribe(ctx, client)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printResponse(resp *connect.Response[playerv1.StatusResponse], err error) error {
	if err != nil {
		return err
	}
	printState(resp.Msg.State)
	return nil
}

func toggleShuffle(ctx context.Context, client playerv1connect.PlayerServiceClient) error {
	resp, err := client.ToggleShuffle(ctx, connect.NewRequest(&playerv1.Empty{}))
	if err != nil {
		return err
	}
	fmt.Printf("Shuffle: %s\n", onOff(resp.Msg.Shuffle))
	return nil
}

func toggleRepeat(ctx context.Context, client playerv1connect.PlayerServiceClient) error {
	resp, err := client.ToggleRepeat(ctx, connect.NewRequest(&playerv1.Empty{}))
	if err != nil {
		return err
	}
	fmt.Printf("Repeat: %s\n", resp.Msg.Repeat)
	return nil
}

func toggleFavorite(ctx context.Context, client playerv1connect.PlayerServiceClient, trackID string) error {
	resp, err := client.ToggleFavorite(ctx, connect.NewRequest(&playerv1.ToggleFavoriteRequest{TrackID: trackID}))
	if err != nil {
		return err
	}
	if resp.Msg.Favorite {
		fmt.Printf("♥ Added %s to favorites\n", trackID)
	} else {
		fmt.Printf("♡ Removed %s from favorites\n", trackID)
	}
	return nil
}

func showListing(ctx context.Context, client playerv1connect.PlayerServiceClient, kind string) error {
	resp, err := client.GetListing(ctx, connect.NewRequest(&playerv1.GetListingRequest{Listing: kind}))
	if err != nil {
		return err
	}
	printListing(*resp.Msg.Listing)
	return nil
}

func showListings(ctx context.Context, client playerv1connect.PlayerServiceClient) error {
	resp, err := client.ListListings(ctx, connect.NewRequest(&playerv1.Empty{}))
	if err != nil {
		return err
	}
	for _, l := range resp.Msg.Listings {
		printListing(l)
		fmt.Println()
	}
	return nil
}

func search(ctx context.Context, client playerv1connect.PlayerServiceClient, query string, limit int32) error {
	resp, err := client.Search(ctx, connect.NewRequest(&playerv1.SearchRequest{Query: query, Limit: limit}))
	if err != nil {
		return err
	}
	if !resp.Msg.Sent {
		fmt.Println("Query too short, nothing searched.")
		return nil
	}
	printListing(playerv1.Listing{Kind: "search-results", Title: fmt.Sprintf("Results for %q", query), Tracks: resp.Msg.Tracks})
	fmt.Printf("\nPlay with: surabhi play search-results <track-id>\n")
	return nil
}

func subscribe(ctx context.Context, client playerv1connect.PlayerServiceClient) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stream, err := client.Subscribe(ctx, connect.NewRequest(&playerv1.Empty{}))
	if err != nil {
		return err
	}
	defer stream.Close()

	fmt.Println("Subscribed to notifications. Press Ctrl+C to exit.")

	for stream.Receive() {
		printNotification(stream.Msg())
	}
	if ctx.Err() != nil {
		fmt.Println("\nUnsubscribed.")
		return nil
	}
	return stream.Err()
}

func printNotification(n *playerv1.Notification) {
	switch n.Type {
	case playerv1.NotificationTypeTimeUpdated:
		// Progress is redrawn in place
		if n.State != nil {
			fmt.Printf("\r  %s", progress(n.State))
		}
		return
	case playerv1.NotificationTypeListingChanged:
		fmt.Printf("\n[%d] listing changed: %s\n", n.SequenceNo, n.Listing)
		return
	}

	fmt.Printf("\n[%d] %s\n", n.SequenceNo, strings.ToUpper(strings.ReplaceAll(string(n.Type), "_", " ")))
	if n.Error != "" {
		fmt.Println(text.FgHiRed.Sprintf("  error: %s", n.Error))
	}
	if n.State != nil {
		printState(n.State)
	}
}

func printState(st *playerv1.PlayerState) {
	if st == nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	now := "-"
	if st.Current != nil {
		now = fmt.Sprintf("%s - %s", st.Current.Title, st.Current.Artist)
		if st.Current.IsFavorite {
			now += " ♥"
		}
	}
	session := st.Phase
	if st.StartedAtMs > 0 {
		uptime := time.Since(time.UnixMilli(st.StartedAtMs)).Truncate(time.Second)
		session = fmt.Sprintf("%s (up %s)", st.Phase, uptime)
	}
	t.AppendRows([]table.Row{
		{"Session", session},
		{"State", stateColor(st.State)(st.State)},
		{"Now playing", now},
		{"Position", progress(st)},
		{"Queue", fmt.Sprintf("%d of %d", st.Index+1, len(st.Queue))},
		{"Volume", fmt.Sprintf("%.0f%%", st.Volume*100)},
		{"Shuffle", onOff(st.Shuffle)},
		{"Repeat", st.Repeat},
	})
	if st.SearchQuery != "" {
		t.AppendRow(table.Row{"Last search", st.SearchQuery})
	}
	t.Render()
}

func printListing(l playerv1.Listing) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s (%s)", l.Title, l.Kind))

	t.AppendHeader(table.Row{"#", "", "Title", "Artist", "Album", "ID"})
	for i, tr := range l.Tracks {
		fav := ""
		if tr.IsFavorite {
			fav = text.FgHiRed.Sprint("♥")
		}
		t.AppendRow(table.Row{i + 1, fav, tr.Title, tr.Artist, tr.Album, text.FgHiBlack.Sprint(tr.ID)})
	}
	if len(l.Tracks) == 0 {
		t.AppendRow(table.Row{"", "", text.FgHiBlack.Sprint("(empty)"), "", "", ""})
	}
	t.Render()
}

func progress(st *playerv1.PlayerState) string {
	elapsed := time.Duration(st.ElapsedMs) * time.Millisecond
	if !st.DurationKnown {
		return formatDuration(elapsed) + " / --:--"
	}
	return formatDuration(elapsed) + " / " + formatDuration(time.Duration(st.DurationMs)*time.Millisecond)
}

func formatDuration(d time.Duration) string {
	s := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func stateColor(state string) func(a ...interface{}) string {
	switch state {
	case "playing":
		return text.FgGreen.Sprint
	case "paused":
		return text.FgYellow.Sprint
	default:
		return text.FgHiBlack.Sprint
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
