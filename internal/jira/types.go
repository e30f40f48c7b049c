package jira

// Issue is the subset of remote issue fields the observer cares about.
type Issue struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Assignee    string `json:"assignee,omitempty"`
	Project     string `json:"project"`
	IssueType   string `json:"issue_type"`
	Created     string `json:"created,omitempty"`
	Updated     string `json:"updated,omitempty"`
}

// Transition is one edge of the remote workflow graph.
type Transition struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ToStatus string `json:"to_status"`
}

// Project identifies a remote project.
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Lead string `json:"lead,omitempty"`
}

// Workflow describes an issue's position in its workflow: current status,
// the transitions reachable from it, and the union of statuses involved.
type Workflow struct {
	IssueKey             string       `json:"issue_key"`
	CurrentStatus        string       `json:"current_status"`
	Project              string       `json:"project"`
	IssueType            string       `json:"issue_type"`
	AvailableTransitions []Transition `json:"available_transitions"`
	AllPossibleStatuses  []string     `json:"all_possible_statuses"`
}

// Wire shapes for the Jira REST v2 API. Only the fields we read are
// declared; everything else is dropped at decode time.

type wireIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
		Status      struct {
			Name string `json:"name"`
		} `json:"status"`
		Assignee *struct {
			DisplayName string `json:"displayName"`
		} `json:"assignee"`
		Project struct {
			Key string `json:"key"`
		} `json:"project"`
		IssueType struct {
			Name string `json:"name"`
		} `json:"issuetype"`
		Created string `json:"created"`
		Updated string `json:"updated"`
	} `json:"fields"`
}

func (w *wireIssue) toIssue() *Issue {
	issue := &Issue{
		Key:         w.Key,
		Summary:     w.Fields.Summary,
		Description: w.Fields.Description,
		Status:      w.Fields.Status.Name,
		Project:     w.Fields.Project.Key,
		IssueType:   w.Fields.IssueType.Name,
		Created:     w.Fields.Created,
		Updated:     w.Fields.Updated,
	}
	if w.Fields.Assignee != nil {
		issue.Assignee = w.Fields.Assignee.DisplayName
	}
	return issue
}

type wireTransitions struct {
	Transitions []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		To   struct {
			Name string `json:"name"`
		} `json:"to"`
	} `json:"transitions"`
}

type wireSearch struct {
	Issues []wireIssue `json:"issues"`
}

type wireWorklog struct {
	ID string `json:"id"`
}

type wireStatus struct {
	Name string `json:"name"`
}

type wireProject struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Lead *struct {
		DisplayName string `json:"displayName"`
	} `json:"lead"`
}

type wireProjectStatuses struct {
	Statuses []wireStatus `json:"statuses"`
}
