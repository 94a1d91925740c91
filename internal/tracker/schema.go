package tracker

// schema is the tracking-store schema, applied on open. Issues are the
// persisted tracking records the deduplicator compares against; labels
// scope candidate retrieval to records this pipeline created; comments
// accumulate duplicate sightings and investigation results.
const schema = `
CREATE TABLE IF NOT EXISTS issues (
    number INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    body TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL DEFAULT 'open' CHECK (state IN ('open', 'closed')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    closed_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS issue_labels (
    issue_number INTEGER NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (issue_number, label),
    FOREIGN KEY (issue_number) REFERENCES issues(number) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS issue_comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    issue_number INTEGER NOT NULL,
    author TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (issue_number) REFERENCES issues(number) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_issues_state ON issues(state);
CREATE INDEX IF NOT EXISTS idx_issues_created_at ON issues(created_at);
CREATE INDEX IF NOT EXISTS idx_issue_labels_label ON issue_labels(label);
CREATE INDEX IF NOT EXISTS idx_issue_comments_issue ON issue_comments(issue_number);
`
