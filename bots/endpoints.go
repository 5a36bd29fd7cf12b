package bots

import "fmt"

const (
	createDCABotPath   = "/create-dca-bot/"
	listDCABotsPath    = "/list-dca-bots/"
	strategyListPath   = "/get-strategy-list/"
	createGridBotPath  = "/create-grid-bot/"
	listGridBotsPath   = "/grid-bots"
	defaultEventsPage  = 1
	defaultEventsLimit = 100
	defaultOrdersLimit = 100
)

func getDCABotPath(id int64) string     { return fmt.Sprintf("/get-dca-bot/%d", id) }
func enableDCABotPath(id int64) string  { return fmt.Sprintf("/enable-dca-bot/%d", id) }
func disableDCABotPath(id int64) string { return fmt.Sprintf("/disable-dca-bot/%d", id) }
func deleteDCABotPath(id int64) string  { return fmt.Sprintf("/delete-dca-bot/%d", id) }
func updateDCABotPath(id int64) string  { return fmt.Sprintf("/update-dca-bot/%d", id) }

func gridBotPath(id int64) string       { return fmt.Sprintf("/grid-bots/%d", id) }
func updateGridBotPath(id int64) string { return fmt.Sprintf("/%d/manual", id) }
func gridBotSubPath(id int64, sub string) string {
	return fmt.Sprintf("/grid-bots/%d/%s", id, sub)
}
