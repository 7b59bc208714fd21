package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/osa030/radiotray/internal/domain/station"
	"github.com/osa030/radiotray/internal/infra/config"
)

var (
	stationsCmd = app.Command("stations", "Manage the station list")

	// stations list
	listCmd = stationsCmd.Command("list", "List stations").Alias("ls")

	// stations add
	addCmd         = stationsCmd.Command("add", "Add a station at the end of the list")
	addName        = addCmd.Arg("name", "Station name").Required().String()
	addURL         = addCmd.Arg("url", "Stream URL").Required().String()
	addDescription = addCmd.Flag("description", "Station description").String()
	addEncoding    = addCmd.Flag("encoding", "Metadata text encoding (e.g. windows-1251)").String()

	// stations remove
	removeCmd   = stationsCmd.Command("remove", "Remove a station").Alias("rm")
	removeIndex = removeCmd.Arg("number", "Station number (from 1)").Required().Int()

	// stations move
	moveCmd       = stationsCmd.Command("move", "Move a station up or down")
	moveIndex     = moveCmd.Arg("number", "Station number (from 1)").Required().Int()
	moveDirection = moveCmd.Arg("direction", "up or down").Required().Enum("up", "down")

	// stations edit
	editCmd         = stationsCmd.Command("edit", "Edit a station")
	editIndex       = editCmd.Arg("number", "Station number (from 1)").Required().Int()
	editName        = editCmd.Flag("name", "New station name").String()
	editURL         = editCmd.Flag("url", "New stream URL").String()
	editDescription = editCmd.Flag("description", "New station description").String()
	editEncoding    = editCmd.Flag("encoding", "New metadata text encoding").String()
)

// runStationCommand executes a stations subcommand against the config file at path.
func runStationCommand(command, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || command == listCmd.FullCommand() {
			return err
		}
		cfg = config.Default()
	}

	list := cfg.Stations
	switch command {
	case listCmd.FullCommand():
		printStations(list)
		return nil

	case addCmd.FullCommand():
		list = list.Append(station.Station{
			Name:        *addName,
			Description: *addDescription,
			URL:         *addURL,
			Encoding:    *addEncoding,
		})

	case removeCmd.FullCommand():
		list, err = list.Remove(*removeIndex - 1)

	case moveCmd.FullCommand():
		if *moveDirection == "up" {
			list, err = list.MoveUp(*moveIndex - 1)
		} else {
			list, err = list.MoveDown(*moveIndex - 1)
		}

	case editCmd.FullCommand():
		var s station.Station
		if s, err = list.Get(*editIndex - 1); err == nil {
			list, err = list.Replace(*editIndex-1, editStation(s))
		}

	default:
		return errors.Newf("unknown command: %s", command)
	}
	if err != nil {
		return err
	}

	if err := config.SaveStations(path, list); err != nil {
		return err
	}
	printStations(list)
	return nil
}

// editStation applies the edit flags that were given to s.
func editStation(s station.Station) station.Station {
	if *editName != "" {
		s.Name = *editName
	}
	if *editURL != "" {
		s.URL = *editURL
	}
	if *editDescription != "" {
		s.Description = *editDescription
	}
	if *editEncoding != "" {
		s.Encoding = *editEncoding
	}
	return s
}

// printStations prints the station list.
func printStations(list station.List) {
	if list.Len() == 0 {
		fmt.Println("No stations")
		return
	}
	fmt.Printf("Stations (%d):\n", list.Len())
	for i, s := range list {
		fmt.Printf("  %2d. %-24s %s\n", i+1, s.Name, s.URL)
		if s.Description != "" {
			fmt.Printf("      %s\n", s.Description)
		}
	}
}
