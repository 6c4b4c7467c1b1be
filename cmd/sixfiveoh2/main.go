// Command sixfiveoh2 is the driving loop around the cpu core: it loads a
// ROM image onto the demo flat-RAM bus and either runs it to completion at
// a paced rate, opens a terminal view of live CPU state one step at a
// time, or disassembles it from its reset vector. None of the subcommands is part of the core's contract (§1): this is
// the out-of-scope "terminal front-end" and "command-line argument parser"
// collaborator the core spec explicitly leaves to its caller.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/urfave/cli.v2"

	"github.com/hatlock/sixfiveoh2/bus"
	"github.com/hatlock/sixfiveoh2/cpu"
	"github.com/hatlock/sixfiveoh2/disasm"
)

func main() {
	app := &cli.App{
		Name:  "sixfiveoh2",
		Usage: "run or inspect a 6502 ROM image",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run a ROM image to completion",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "rom", Aliases: []string{"r"}, Usage: "path to a 32KiB ROM image", Required: true},
					&cli.DurationFlag{Name: "delay", Aliases: []string{"d"}, Usage: "wall-clock delay between instructions (0 = full speed)"},
					&cli.IntFlag{Name: "max-steps", Value: 1_000_000, Usage: "abort after this many instructions"},
				},
				Action: runAction,
			},
			{
				Name:  "watch",
				Usage: "step a ROM image one instruction at a time in a terminal view",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "rom", Aliases: []string{"r"}, Usage: "path to a 32KiB ROM image", Required: true},
				},
				Action: watchAction,
			},
			{
				Name:  "disasm",
				Usage: "disassemble a ROM image starting at its reset vector",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "rom", Aliases: []string{"r"}, Usage: "path to a 32KiB ROM image", Required: true},
					&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 32, Usage: "number of instructions to disassemble"},
				},
				Action: disasmAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("sixfiveoh2: %v", err)
	}
}

func loadMachine(romPath string) (*cpu.Chip, *bus.RAM, error) {
	data, err := os.ReadFile(romPath)
	if err != nil {
		return nil, nil, err
	}
	ram := bus.NewRAM()
	if err := ram.LoadROM(data); err != nil {
		return nil, nil, err
	}
	c := cpu.New(ram)
	return c, ram, nil
}

func runAction(c *cli.Context) error {
	chip, _, err := loadMachine(c.String("rom"))
	if err != nil {
		return err
	}
	delay := c.Duration("delay")
	maxSteps := c.Int("max-steps")

	log.Printf("sixfiveoh2: running %s, reset to $%04X", c.String("rom"), chip.PC)
	for i := 0; i < maxSteps; i++ {
		r, err := chip.StepInstruction()
		if err != nil {
			log.Printf("halted after %d instructions (%d cycles): %v", i, chip.Cycles(), err)
			return err
		}
		if r.Opcode == 0x00 && !r.IsInterrupt {
			log.Printf("BRK after %d instructions (%d cycles)", i+1, chip.Cycles())
			return nil
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	log.Printf("stopped at max-steps (%d cycles)", chip.Cycles())
	return nil
}

func watchAction(c *cli.Context) error {
	chip, ram, err := loadMachine(c.String("rom"))
	if err != nil {
		return err
	}
	return runWatch(chip, ram)
}

func disasmAction(c *cli.Context) error {
	chip, ram, err := loadMachine(c.String("rom"))
	if err != nil {
		return err
	}
	addr := chip.PC
	for i := 0; i < c.Int("count"); i++ {
		text, length := disasm.Instruction(ram, addr)
		fmt.Println(text)
		addr += uint16(length)
	}
	return nil
}
