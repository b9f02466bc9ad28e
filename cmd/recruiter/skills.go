package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theduardomaciel/projeto-ia/internal/config"
)

var skillsJSON bool

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List the hard and soft skills of the dictionary",
	RunE:  runSkills,
}

func init() {
	skillsCmd.Flags().BoolVar(&skillsJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(skillsCmd)
}

func runSkills(cmd *cobra.Command, _ []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	skills, err := config.LoadSkills(env.SkillsPath())
	if err != nil {
		return err
	}

	hard, soft := skills.HardTerms(), skills.SoftTerms()
	if skillsJSON {
		return printJSON(cmd, map[string][]string{"hard_skills": hard, "soft_skills": soft})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Hard skills (%d):\n  %s\n", len(hard), strings.Join(hard, ", "))
	fmt.Fprintf(out, "Soft skills (%d):\n  %s\n", len(soft), strings.Join(soft, ", "))
	return nil
}
