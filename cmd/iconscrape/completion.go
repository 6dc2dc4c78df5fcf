package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
)

func handleCompletion(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: iconscrape completion [bash|zsh|fish]")
	}
	shell := fs.Arg(0)
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		return fmt.Errorf("unknown shell: %s", shell)
	}
	return nil
}

const bashCompletion = `# bash completion for iconscrape
_iconscrape_completions()
{
    local cur prev words cword
    _init_completion || return
    local cmds="search tui batch history config doctor completion version help"
    if [[ ${cword} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "${cmds}" -- "$cur") )
        return
    fi
    case ${words[1]} in
        search)
            COMPREPLY=( $(compgen -W "--config --log-level --json --q --format --pick --out" -- "$cur") ) ;;
        tui)
            COMPREPLY=( $(compgen -W "--config --log-level --json --log-file" -- "$cur") ) ;;
        batch)
            COMPREPLY=( $(compgen -W "--config --log-level --json --file" -- "$cur") ) ;;
        history)
            COMPREPLY=( $(compgen -W "--config --exports --limit --json --check" -- "$cur") ) ;;
        config)
            COMPREPLY=( $(compgen -W "validate print wizard --config --log-level --json --out" -- "$cur") ) ;;
        doctor)
            COMPREPLY=( $(compgen -W "--config --verbose --probe --offline" -- "$cur") ) ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- "$cur") ) ;;
        *) ;;
    esac
}
complete -F _iconscrape_completions iconscrape
`

const zshCompletion = `#compdef iconscrape
# zsh completion for iconscrape (basic)
_iconscrape() {
  local -a cmds
  cmds=(search tui batch history config doctor completion version help)
  if (( CURRENT == 2 )); then
    _describe 'command' cmds
    return
  fi
  case $words[2] in
    search)
      _arguments '*:options:(--config --log-level --json --q --format --pick --out)'
      ;;
    tui)
      _arguments '*:options:(--config --log-level --json --log-file)'
      ;;
    batch)
      _arguments '*:options:(--config --log-level --json --file)'
      ;;
    history)
      _arguments '*:options:(--config --exports --limit --json --check)'
      ;;
    config)
      _arguments '*:options:(--config --log-level --json --out validate print wizard)'
      ;;
    doctor)
      _arguments '*:options:(--config --verbose --probe --offline)'
      ;;
    completion)
      _arguments '*:options:(bash zsh fish)'
      ;;
  esac
}
compdef _iconscrape iconscrape
`

const fishCompletion = `# fish completion for iconscrape
complete -c iconscrape -f -n "__fish_use_subcommand" -a "search" -d "search icons"
complete -c iconscrape -f -n "__fish_use_subcommand" -a "tui" -d "interactive browser"
complete -c iconscrape -f -n "__fish_use_subcommand" -a "batch" -d "run export jobs"
complete -c iconscrape -f -n "__fish_use_subcommand" -a "history" -d "recorded searches and exports"
complete -c iconscrape -f -n "__fish_use_subcommand" -a "config" -d "config ops"
complete -c iconscrape -f -n "__fish_use_subcommand" -a "doctor" -d "run diagnostics"
complete -c iconscrape -f -n "__fish_use_subcommand" -a "version" -d "print version"
complete -c iconscrape -f -n "__fish_use_subcommand" -a "completion" -d "shell completions"

# Common flags
for cmd in search tui batch history config
  complete -c iconscrape -n "__fish_seen_subcommand_from $cmd" -l config -d "Path to config"
  complete -c iconscrape -n "__fish_seen_subcommand_from $cmd" -l log-level -d "Log level"
end
complete -c iconscrape -n "__fish_seen_subcommand_from search" -l q -d "Keywords separated by ;"
complete -c iconscrape -n "__fish_seen_subcommand_from search" -l format -d "text|json"
complete -c iconscrape -n "__fish_seen_subcommand_from search" -l pick -d "query=index,... to download"
complete -c iconscrape -n "__fish_seen_subcommand_from search" -l out -d "Archive directory"
complete -c iconscrape -n "__fish_seen_subcommand_from batch" -l file -d "YAML jobs file"
complete -c iconscrape -n "__fish_seen_subcommand_from history" -l exports -d "List exports"
complete -c iconscrape -n "__fish_seen_subcommand_from history" -l limit -d "Maximum rows"
complete -c iconscrape -n "__fish_seen_subcommand_from history" -l check -d "Integrity check"
complete -c iconscrape -n "__fish_seen_subcommand_from tui" -l log-file -d "Log file"
complete -c iconscrape -n "__fish_seen_subcommand_from doctor" -l probe -d "Keyword to test-search"
complete -c iconscrape -n "__fish_seen_subcommand_from doctor" -l offline -d "Skip network checks"
`
