package main

import (
	_ "git.agora.community/agora/agora/src/admintools"
	_ "git.agora.community/agora/agora/src/migration"
	"git.agora.community/agora/agora/src/website"
)

func main() {
	website.WebsiteCommand.Execute()
}
