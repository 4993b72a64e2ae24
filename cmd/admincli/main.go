// Package main provides the admin CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/surabhi/internal/api/connect"
	"github.com/osa030/surabhi/internal/api/playerv1"
	"github.com/osa030/surabhi/internal/api/playerv1/playerv1connect"
)

var (
	app    = kingpin.New("surabhi-admincli", "surabhi library admin client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Admin token (or set ADMIN_TOKEN env)").Envar("ADMIN_TOKEN").String()

	// import command
	importCmd   = app.Command("import", "Upload audio files into the local library")
	importFiles = importCmd.Arg("files", "Audio files (.mp3 .wav .flac .ogg .m4a .aac)").Required().ExistingFiles()

	// remove command
	removeCmd     = app.Command("remove", "Remove a track from the local library")
	removeTrackID = removeCmd.Arg("track-id", "Local track ID (UUID)").Required().String()

	// list command
	listCmd = app.Command("list", "List the local library").Alias("ls")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *token == "" && command != listCmd.FullCommand() {
		fmt.Println("Error: admin token is required (use --token or ADMIN_TOKEN env)")
		os.Exit(1)
	}

	client := playerv1connect.NewAdminServiceClient(
		http.DefaultClient,
		*server,
	)

	ctx := context.Background()

	var err error
	switch command {
	case importCmd.FullCommand():
		err = importTracks(ctx, client, *token, *importFiles)
	case removeCmd.FullCommand():
		err = removeTrack(ctx, client, *token, *removeTrackID)
	case listCmd.FullCommand():
		err = listLibrary(ctx)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func importTracks(ctx context.Context, client playerv1connect.AdminServiceClient, token string, paths []string) error {
	files := make([]playerv1.UploadFile, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", path, err)
			continue
		}
		files = append(files, playerv1.UploadFile{Name: filepath.Base(path), Content: content})
	}

	req := connect.NewRequest(&playerv1.ImportFilesRequest{Files: files})
	req.Header().Set(apiconnect.AdminTokenHeader, token)

	resp, err := client.ImportFiles(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d of %d files\n", len(resp.Msg.Tracks), len(paths))
	printTracks(resp.Msg.Tracks)
	return nil
}

func removeTrack(ctx context.Context, client playerv1connect.AdminServiceClient, token, trackID string) error {
	req := connect.NewRequest(&playerv1.RemoveLocalTrackRequest{TrackID: trackID})
	req.Header().Set(apiconnect.AdminTokenHeader, token)

	if _, err := client.RemoveLocalTrack(ctx, req); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", trackID)
	return nil
}

func listLibrary(ctx context.Context) error {
	player := playerv1connect.NewPlayerServiceClient(http.DefaultClient, *server)
	resp, err := player.GetListing(ctx, connect.NewRequest(&playerv1.GetListingRequest{Listing: "local-library"}))
	if err != nil {
		return err
	}
	printTracks(resp.Msg.Listing.Tracks)
	return nil
}

func printTracks(tracks []playerv1.Track) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"#", "ID", "Title", "Artist", "Album"})
	for i, tr := range tracks {
		t.AppendRow(table.Row{i + 1, tr.ID, tr.Title, tr.Artist, tr.Album})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d tracks", len(tracks)), "", "", ""})
	t.Render()
}
