package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE recordings (
				id UUID PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				duration_seconds INT NOT NULL,
				audio_ref TEXT NOT NULL,
				transcript TEXT,
				summary TEXT,
				highlights JSONB,
				status VARCHAR(20) NOT NULL CHECK (status IN ('processing', 'processed', 'failed')),
				error TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_recordings_status ON recordings(status);
			CREATE INDEX idx_recordings_created_at ON recordings(created_at);

			CREATE TABLE actions (
				id UUID PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				notes TEXT NOT NULL DEFAULT '',
				meeting_id UUID,
				due_date TIMESTAMP WITH TIME ZONE NOT NULL,
				priority VARCHAR(10) NOT NULL CHECK (priority IN ('high', 'medium', 'low')),
				status VARCHAR(20) NOT NULL CHECK (status IN ('not_reviewed', 'pending', 'completed')),
				has_been_opened BOOLEAN NOT NULL DEFAULT false,
				archived BOOLEAN NOT NULL DEFAULT false,
				completed_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_actions_meeting_id ON actions(meeting_id);
			CREATE INDEX idx_actions_status ON actions(status);
			CREATE INDEX idx_actions_archived ON actions(archived);
			CREATE INDEX idx_actions_created_at ON actions(created_at);

			CREATE TABLE archived_recordings (
				id UUID PRIMARY KEY,
				recording_id UUID NOT NULL,
				title VARCHAR(255) NOT NULL,
				duration_seconds INT NOT NULL,
				transcript TEXT,
				highlights JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				archived_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_archived_recordings_archived_at ON archived_recordings(archived_at);

			CREATE TABLE change_seq (
				id INT PRIMARY KEY,
				seq BIGINT NOT NULL DEFAULT 0
			);

			INSERT INTO change_seq (id, seq) VALUES (1, 0);
		`,
	}
}
