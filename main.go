package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/Akamitori/nes-emulator-sub000/emu/log"
)

var version = "dev"

func main() {
	cli := parseArgs(os.Args[1:])

	cfg, err := LoadConfigOrDefault(cli.ConfigPath)
	checkf(err, "failed to load config")

	if cli.Log.set {
		cli.Log.apply()
	} else {
		mask, none, err := parseLogModules(cfg.Log.Modules)
		checkf(err, "invalid log modules in config")
		logModMask{mask: mask, none: none}.apply()
	}

	switch cli.mode {
	case runMode:
		cpu, err := runMain(cli.Run, cfg)
		if cpu != nil {
			printCPUState(os.Stdout, cpu)
		}
		checkf(err, "emulation failed")
	case snakeMode:
		checkf(snakeMain(cli.Snake, cfg), "snake failed")
	case romInfosMode:
		checkf(romInfosMain(os.Stdout, cli.RomInfos), "failed to read ROM infos")
	case disasmMode:
		checkf(disasmMain(os.Stdout, cli.Disasm), "failed to disassemble")
	case configMode:
		if cli.Config.Save {
			checkf(SaveConfig(cli.ConfigPath, cfg), "failed to save config")
			return
		}
		checkf(toml.NewEncoder(os.Stdout).Encode(cfg), "failed to print config")
	case versionMode:
		fmt.Println("nescore", version)
	}
}
