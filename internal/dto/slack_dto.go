package dto

import "encoding/json"

// SlackEventEnvelope is the outer body of an Events API callback.
type SlackEventEnvelope struct {
	Type      string          `json:"type"`
	Token     string          `json:"token"`
	Challenge string          `json:"challenge"`
	TeamId    string          `json:"team_id"`
	EventId   string          `json:"event_id"`
	Event     json.RawMessage `json:"event"`
}

type SlackMessageEvent struct {
	Type        string `json:"type"`
	Subtype     string `json:"subtype"`
	BotId       string `json:"bot_id"`
	User        string `json:"user"`
	Text        string `json:"text"`
	Channel     string `json:"channel"`
	TS          string `json:"ts"`
	ThreadTS    string `json:"thread_ts"`
	ClientMsgId string `json:"client_msg_id"`
	SourceHint  string `json:"source_hint"`
}

type SlackInteractionPayload struct {
	Type        string `json:"type"`
	TriggerId   string `json:"trigger_id"`
	ResponseURL string `json:"response_url"`
	Team        struct {
		Id string `json:"id"`
	} `json:"team"`
	User struct {
		Id   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
	Channel struct {
		Id string `json:"id"`
	} `json:"channel"`
	Message struct {
		TS string `json:"ts"`
	} `json:"message"`
	Container struct {
		MessageTs string `json:"message_ts"`
		ChannelId string `json:"channel_id"`
	} `json:"container"`
	Actions []struct {
		ActionId string `json:"action_id"`
		Value    string `json:"value"`
	} `json:"actions"`
	View *SlackView `json:"view"`
}

type SlackView struct {
	Id              string `json:"id"`
	CallbackId      string `json:"callback_id"`
	PrivateMetadata string `json:"private_metadata"`
	State           struct {
		Values map[string]map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"values"`
	} `json:"state"`
}

// Value returns the submitted text of an input block.
func (v *SlackView) Value(blockID, actionID string) string {
	if v == nil {
		return ""
	}
	return v.State.Values[blockID][actionID].Value
}

type SlackCommandRequest struct {
	Command     string `form:"command"`
	Text        string `form:"text"`
	TeamId      string `form:"team_id"`
	ChannelId   string `form:"channel_id"`
	UserId      string `form:"user_id"`
	ResponseURL string `form:"response_url"`
	TriggerId   string `form:"trigger_id"`
}
