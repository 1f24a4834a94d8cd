package app

import (
	"fmt"
	"strconv"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandSeed はデモ用のデータを投入することを示す。
	CommandSeed Command = "seed"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "seed":
		return CommandSeed
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}

// MigrateAction は migrate サブコマンドの動作。
type MigrateAction string

const (
	MigrateUp      MigrateAction = "up"
	MigrateDown    MigrateAction = "down"
	MigrateVersion MigrateAction = "version"
)

// MigrateOptions は migrate サブコマンドの引数を解析した結果。
type MigrateOptions struct {
	Action MigrateAction
	Steps  int // down のみ有効
}

// ParseMigrateArgs は migrate に続く引数を解析する。
// 引数なしは up、down のステップ数は省略時1。
func ParseMigrateArgs(args []string) (MigrateOptions, error) {
	if len(args) == 0 {
		return MigrateOptions{Action: MigrateUp}, nil
	}

	switch MigrateAction(args[0]) {
	case MigrateUp:
		return MigrateOptions{Action: MigrateUp}, nil
	case MigrateVersion:
		return MigrateOptions{Action: MigrateVersion}, nil
	case MigrateDown:
		opts := MigrateOptions{Action: MigrateDown, Steps: 1}
		if len(args) > 1 {
			steps, err := strconv.Atoi(args[1])
			if err != nil || steps < 1 {
				return MigrateOptions{}, fmt.Errorf("invalid step count: %q", args[1])
			}
			opts.Steps = steps
		}
		return opts, nil
	}
	return MigrateOptions{}, fmt.Errorf("unknown migrate action: %q", args[0])
}
