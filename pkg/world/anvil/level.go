package anvil

import (
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/maxsupermanhd/go-vmc/v764/nbt"
)

type levelRoot struct {
	Data levelData `nbt:"Data"`
}

type levelData struct {
	LevelName     string       `nbt:"LevelName"`
	DataVersion   int32        `nbt:"DataVersion"`
	Version       levelVersion `nbt:"Version"`
	GameType      int32        `nbt:"GameType"`
	Difficulty    byte         `nbt:"Difficulty"`
	AllowCommands byte         `nbt:"allowCommands"`
	Initialized   byte         `nbt:"initialized"`
	SpawnX        int32        `nbt:"SpawnX"`
	SpawnY        int32        `nbt:"SpawnY"`
	SpawnZ        int32        `nbt:"SpawnZ"`
	Time          int64        `nbt:"Time"`
	DayTime       int64        `nbt:"DayTime"`
}

type levelVersion struct {
	ID       int32  `nbt:"Id"`
	Name     string `nbt:"Name"`
	Series   string `nbt:"Series"`
	Snapshot byte   `nbt:"Snapshot"`
}

// writeLevelDat writes the minimal gzipped level.dat a renderer needs to
// recognize the directory as a Java-edition world.
func writeLevelDat(dir string) error {
	level := levelRoot{
		Data: levelData{
			LevelName:     filepath.Base(dir),
			DataVersion:   dataVersion,
			Version:       levelVersion{ID: dataVersion, Name: "1.19.4", Series: "main"},
			GameType:      1, // creative
			AllowCommands: 1,
			Initialized:   1,
			DayTime:       6000, // noon, so sun lighting is deterministic
		},
	}

	f, err := os.Create(filepath.Join(dir, "level.dat"))
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(f)
	if err := nbt.NewEncoder(gz).Encode(level, ""); err != nil {
		f.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
