package parser

// Representative webhook fixtures, one per supported format. Trimmed to
// the fields the extractors read plus enough surrounding structure to
// exercise detection.

const pagerDutyFixture = `{
  "event": {
    "id": "01BRB6ZP4M6T8ZG4X6BP63ZB9O",
    "event_type": "incident.triggered",
    "occurred_at": "2026-01-15T10:30:00Z",
    "data": {
      "id": "PT4KHLK",
      "type": "incident",
      "title": "NullPointerException in UserController",
      "urgency": "high",
      "status": "triggered",
      "html_url": "https://acme.pagerduty.com/incidents/PT4KHLK",
      "service": {
        "id": "PF9KMXH",
        "name": "user-service"
      },
      "details": {
        "stack_trace": "java.lang.NullPointerException: user was null\n    at com.acme.UserController.getUser(UserController.java:42)\n    at com.acme.ApiHandler.handle(ApiHandler.java:91)"
      },
      "custom_details": {
        "region": "us-east-1"
      }
    }
  }
}`

const datadogFixture = `{
  "id": "7446351941482368997",
  "event_id": "7446351941482368997",
  "title": "[Triggered] High error rate on checkout",
  "body": "Error rate exceeded 5% over the last 10 minutes.\n\n` + "```" + `\nTypeError: cannot read properties of undefined\n    at processOrder (checkout.js:118)\n` + "```" + `",
  "alert_type": "error",
  "priority": "normal",
  "date": 1768473000000,
  "tags": "monitor,service:checkout,env:prod",
  "link": "https://app.datadoghq.com/event/event?id=7446351941482368997"
}`

const cloudWatchFixture = `{
  "AlarmName": "orders-dynamodb-throttling",
  "AlarmDescription": "Throttled requests on the orders table",
  "NewStateValue": "ALARM",
  "NewStateReason": "Threshold Crossed: 1 datapoint [12.0] was greater than the threshold (5.0).",
  "StateChangeTime": "2026-01-15T10:30:00.000+0000",
  "Region": "US East (N. Virginia)",
  "Trigger": {
    "MetricName": "ThrottledRequests",
    "Namespace": "AWS/DynamoDB",
    "Dimensions": [
      {"name": "TableName", "value": "orders"}
    ]
  }
}`

const cloudWatchSNSFixture = `{
  "Type": "Notification",
  "MessageId": "f2c7f090-9a8b-5c7e-b84e-19b8c2f15a61",
  "TopicArn": "arn:aws:sns:us-east-1:123456789012:alarms",
  "Timestamp": "2026-01-15T10:31:00.000Z",
  "Message": "{\"AlarmName\":\"checkout-5xx\",\"NewStateValue\":\"ALARM\",\"NewStateReason\":\"Threshold Crossed\",\"StateChangeTime\":\"2026-01-15T10:30:00.000+0000\",\"Trigger\":{\"MetricName\":\"HTTPCode_Target_5XX_Count\",\"Namespace\":\"AWS/ApplicationELB\",\"Dimensions\":[{\"name\":\"ServiceName\",\"value\":\"checkout\"}]}}"
}`

const sentryFixture = `{
  "id": "1234567",
  "project": "billing",
  "project_slug": "billing",
  "culprit": "billing.worker in charge_card",
  "message": "IndexError: list index out of range",
  "url": "https://sentry.io/organizations/acme/issues/1234567/",
  "level": "error",
  "event": {
    "event_id": "9fbc0f2db2f24a1eb158f51b1e2a6c8d",
    "title": "IndexError: list index out of range",
    "level": "error",
    "timestamp": 1768473000,
    "environment": "production",
    "tags": [["environment", "production"], ["release", "2.14.0"]],
    "exception": {
      "values": [
        {
          "type": "IndexError",
          "value": "list index out of range",
          "stacktrace": {
            "frames": [
              {"filename": "worker.py", "function": "run", "lineno": 31},
              {"filename": "billing.py", "function": "charge_card", "lineno": 118}
            ]
          }
        }
      ]
    }
  }
}`

const opsgenieFixture = `{
  "action": "Create",
  "integrationName": "prod-monitors",
  "alert": {
    "alertId": "052652ac-5d1c-464a-812a-7dd18bbfba8c",
    "message": "CPU saturation on payments workers",
    "description": "Sustained CPU above 95% for 15 minutes on the payments worker pool.",
    "priority": "P1",
    "source": "payments",
    "entity": "payments-worker",
    "createdAt": 1768473000000,
    "tags": ["prod", "team:payments"],
    "details": {
      "runbook": "https://wiki.acme.dev/runbooks/cpu"
    }
  }
}`

const alertmanagerFixture = `{
  "version": "4",
  "groupKey": "{}:{alertname=\"HighErrorRate\"}",
  "status": "firing",
  "receiver": "triage",
  "externalURL": "https://alertmanager.acme.dev",
  "alerts": [
    {
      "status": "firing",
      "labels": {
        "alertname": "HighErrorRate",
        "severity": "critical",
        "service": "checkout",
        "namespace": "prod"
      },
      "annotations": {
        "summary": "High error rate on checkout",
        "description": "5xx rate is 8% over 10m"
      },
      "startsAt": "2026-01-15T10:30:00Z",
      "generatorURL": "https://prometheus.acme.dev/graph?g0.expr=...",
      "fingerprint": "c4e2b1a09d8f7e63"
    }
  ]
}`
